package commands

import (
	"context"
	"time"

	"github.com/medstore/medstore/pkg/seed"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var (
		watch    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import medication records from a YAML file",
		Long: `Import medication records from a YAML file.

The file holds a "medications" list whose entries use the column names as
keys (id, person_name, age, condition, medicine_name, dosage, frequency,
start_date, end_date). Records whose id is already stored are skipped.

With --watch the file is imported again each time it changes, until
interrupted. If telemetry.metrics_listen is configured, metrics are served
while watching.`,
		Example: `  medstore import records.yaml

  # Keep importing as the file is edited
  medstore import records.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			importer := seed.NewImporter(a.store, a.tel)
			importFile := func(ctx context.Context) (seed.Summary, error) {
				records, err := seed.LoadFile(path)
				if err != nil {
					return seed.Summary{}, err
				}
				return importer.Import(ctx, "import", records)
			}

			sum, err := importFile(a.ctx)
			if err != nil {
				return err
			}
			if err := printSummary(cmd, sum); err != nil {
				return err
			}

			if !watch {
				return nil
			}

			if err := a.tel.StartMetricsServer(a.ctx); err != nil {
				return err
			}

			w := seed.NewWatcher(path, debounce, a.tel.Logger, func(ctx context.Context) error {
				sum, err := importFile(ctx)
				if err != nil {
					return err
				}
				return printSummary(cmd, sum)
			})
			return w.Run(a.ctx)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-import whenever the file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", seed.DefaultDebounce, "wait this long for writes to settle before re-importing")

	return cmd
}
