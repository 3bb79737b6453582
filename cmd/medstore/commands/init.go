package commands

import (
	"fmt"

	"github.com/medstore/medstore/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the medication database",
		Long: `Create the medication database and its schema.

Running init against an existing database is safe: the schema is only created
when missing. With --write-config a default configuration file is written to
the --config path, or ./medstore.yaml.`,
		Example: `  # Create ./medications.db
  medstore init

  # Create a database elsewhere and record it in a config file
  medstore init --db /var/lib/medstore/meds.db --write-config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(writeConfig)
			if err != nil {
				return err
			}

			a, err := openAppWithConfig(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.HealthCheck(a.ctx); err != nil {
				return fmt.Errorf("database health check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Initialized SQLite database: %s\n", a.cfg.Database.Path)

			if writeConfig {
				path := configPath
				if path == "" {
					path = config.DefaultPath
				}
				if err := a.cfg.WriteFile(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Created config file: %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "write a default config file")

	return cmd
}
