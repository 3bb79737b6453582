package commands

import (
	"context"

	"github.com/medstore/medstore/pkg/stores"
	"github.com/spf13/cobra"
)

// searchMethod selects one of a store's search operations.
type searchMethod func(stores.Store) func(ctx context.Context, substring string) ([]*stores.Medication, error)

var (
	searchByPerson searchMethod = func(s stores.Store) func(context.Context, string) ([]*stores.Medication, error) {
		return s.SearchByPerson
	}
	searchByCondition searchMethod = func(s stores.Store) func(context.Context, string) ([]*stores.Medication, error) {
		return s.SearchByCondition
	}
	searchByMedicine searchMethod = func(s stores.Store) func(context.Context, string) ([]*stores.Medication, error) {
		return s.SearchByMedicine
	}
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search medication records by substring",
		Long: `Search medication records whose field contains the given text.

Matching is case-sensitive. An empty text matches every record.`,
	}

	cmd.AddCommand(newSearchFieldCommand("person", "Search by person name", searchByPerson))
	cmd.AddCommand(newSearchFieldCommand("condition", "Search by condition", searchByCondition))
	cmd.AddCommand(newSearchFieldCommand("medicine", "Search by medicine name", searchByMedicine))

	return cmd
}

func newSearchFieldCommand(name, short string, method searchMethod) *cobra.Command {
	return &cobra.Command{
		Use:     name + " TEXT",
		Short:   short,
		Example: "  medstore search " + name + " Ali",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			meds, err := method(a.store)(a.ctx, args[0])
			if err != nil {
				return err
			}
			return printMedications(cmd.OutOrStdout(), meds)
		},
	}
}
