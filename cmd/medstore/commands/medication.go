package commands

import (
	"fmt"
	"strconv"

	"github.com/medstore/medstore/pkg/stores"
	"github.com/spf13/cobra"
)

// medicationFlags are the record fields shared by add and update.
type medicationFlags struct {
	person    string
	age       int
	condition string
	medicine  string
	dosage    string
	frequency string
	start     string
	end       string
}

func (f *medicationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.person, "person", "", "person name")
	cmd.Flags().IntVar(&f.age, "age", 0, "person age")
	cmd.Flags().StringVar(&f.condition, "condition", "", "condition being treated")
	cmd.Flags().StringVar(&f.medicine, "medicine", "", "medicine name")
	cmd.Flags().StringVar(&f.dosage, "dosage", "", `dosage, e.g. "2 tablet(s)"`)
	cmd.Flags().StringVar(&f.frequency, "frequency", "", `frequency, e.g. "1 time/day"`)
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
}

// apply copies the flags that were set on cmd onto m.
func (f *medicationFlags) apply(cmd *cobra.Command, m *stores.Medication) {
	changed := cmd.Flags().Changed
	if changed("person") {
		m.PersonName = f.person
	}
	if changed("age") {
		m.Age = f.age
	}
	if changed("condition") {
		m.Condition = f.condition
	}
	if changed("medicine") {
		m.MedicineName = f.medicine
	}
	if changed("dosage") {
		m.Dosage = f.dosage
	}
	if changed("frequency") {
		m.Frequency = f.frequency
	}
	if changed("start") {
		m.StartDate = f.start
	}
	if changed("end") {
		m.EndDate = f.end
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid medication id %q: %w", arg, err)
	}
	return id, nil
}

func newAddCommand() *cobra.Command {
	var (
		id    int64
		flags medicationFlags
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medication record",
		Long: `Add a new medication record.

The id must not already be in use. Fields that are not given are stored empty.`,
		Example: `  medstore add --id 1 --person Fatima --age 58 --condition Hypertension \
    --medicine Lisinopril --dosage "1 tablet(s)" --frequency "1 time/day" \
    --start 2025-01-01 --end 2025-02-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			m := &stores.Medication{ID: id}
			flags.apply(cmd, m)

			if err := a.store.AddMedication(a.ctx, m); err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added medication %d\n", m.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "medication id")
	_ = cmd.MarkFlagRequired("id")
	flags.register(cmd)

	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a medication record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			m, err := a.store.GetMedication(a.ctx, id)
			if err != nil {
				return err
			}
			return printMedication(cmd.OutOrStdout(), id, m)
		},
	}
}

func newUpdateCommand() *cobra.Command {
	var flags medicationFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a medication record",
		Long: `Update fields of an existing medication record.

Only the fields given as flags change; the others keep their stored values.`,
		Example: `  # Change the dosage of record 3
  medstore update 3 --dosage "2 tablet(s)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			m, err := a.store.GetMedication(a.ctx, id)
			if err != nil {
				return err
			}
			if m == nil {
				m = &stores.Medication{ID: id}
			}
			flags.apply(cmd, m)

			// A record deleted since the read is reported as not found.
			if err := a.store.UpdateMedication(a.ctx, m); err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated medication %d\n", id)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a medication record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.DeleteMedication(a.ctx, id); err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"deleted": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted medication %d\n", id)
			return nil
		},
	}
}
