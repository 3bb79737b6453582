package commands

import (
	"fmt"

	"github.com/medstore/medstore/pkg/seed"
	"github.com/spf13/cobra"
)

func newDemoCommand() *cobra.Command {
	var randSeed uint64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed sample data and run example queries",
		Long: `Seed ten sample records, then show record 1 and the results of searching
for person "Ali", condition "Diabetes" and medicine "Metformin".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := seed.NewImporter(a.store, a.tel).Seed(a.ctx, seed.NewGenerator(randSeed), seed.DefaultCount); err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			m, err := a.store.GetMedication(a.ctx, 1)
			if err != nil {
				return err
			}

			if jsonOutput {
				report := map[string]interface{}{"medication_1": m}
				for _, q := range demoQueries {
					meds, err := q.search(a.store)(a.ctx, q.text)
					if err != nil {
						return err
					}
					report[q.key] = meds
				}
				return printJSON(out, report)
			}

			fmt.Fprintln(out, "Medication with id 1:")
			if err := printMedication(out, 1, m); err != nil {
				return err
			}

			for _, q := range demoQueries {
				meds, err := q.search(a.store)(a.ctx, q.text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s:\n", q.title)
				if err := printMedications(out, meds); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&randSeed, "rand-seed", 0, "random seed (0 picks one)")

	return cmd
}

type demoQuery struct {
	key    string
	title  string
	text   string
	search searchMethod
}

var demoQueries = []demoQuery{
	{
		key:    "person_ali",
		title:  "Medications for person containing 'Ali'",
		text:   "Ali",
		search: searchByPerson,
	},
	{
		key:    "condition_diabetes",
		title:  "Medications for condition 'Diabetes'",
		text:   "Diabetes",
		search: searchByCondition,
	},
	{
		key:    "medicine_metformin",
		title:  "Medications with medicine 'Metformin'",
		text:   "Metformin",
		search: searchByMedicine,
	},
}
