package commands

import (
	"fmt"

	"github.com/medstore/medstore/pkg/seed"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var (
		count    int
		randSeed uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert generated sample records",
		Long: `Insert generated sample records with ids 1..count.

Names, conditions, medicines and frequencies are drawn from fixed pools. Ids
that are already stored are skipped, so seeding twice changes nothing.`,
		Example: `  # Ten random records
  medstore seed

  # Reproducible data
  medstore seed --count 50 --rand-seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			sum, err := seed.NewImporter(a.store, a.tel).Seed(a.ctx, seed.NewGenerator(randSeed), count)
			if err != nil {
				return err
			}
			return printSummary(cmd, sum)
		},
	}

	cmd.Flags().IntVar(&count, "count", seed.DefaultCount, "number of records to generate")
	cmd.Flags().Uint64Var(&randSeed, "rand-seed", 0, "random seed (0 picks one)")

	return cmd
}

func printSummary(cmd *cobra.Command, sum seed.Summary) error {
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), sum)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d, skipped %d existing\n", sum.Inserted, sum.Skipped)
	return err
}
