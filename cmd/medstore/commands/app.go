package commands

import (
	"context"
	"fmt"

	"github.com/medstore/medstore/pkg/config"
	"github.com/medstore/medstore/pkg/stores"
	"github.com/medstore/medstore/pkg/telemetry"
	"github.com/spf13/cobra"
)

// app holds what a command needs to talk to the store.
type app struct {
	ctx   context.Context
	cfg   *config.Config
	tel   *telemetry.Telemetry
	store stores.Store
}

// loadConfig reads the config file and applies the global flag overrides.
// With allowMissing an absent --config file yields the defaults.
func loadConfig(allowMissing bool) (*config.Config, error) {
	load := config.Load
	if allowMissing {
		load = config.LoadOptional
	}

	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads configuration, sets up telemetry and opens a migrated,
// instrumented store. Callers must call close.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	return openAppWithConfig(cmd, cfg)
}

func openAppWithConfig(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	tel, err := telemetry.NewTelemetry(cfg.TelemetryConfig(buildVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	ctx, invocationID := tel.WithInvocation(cmd.Context())
	logger := tel.Logger.NewComponentLogger("cli")

	sqlite, err := stores.NewSQLiteStore(cfg.StoreConfig())
	if err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	store := stores.NewInstrumentedStore(sqlite, tel)

	if err := store.Init(ctx); err != nil {
		_ = tel.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		_ = tel.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"command":       cmd.CommandPath(),
		"database":      sqlite.Path(),
		"invocation_id": invocationID,
	}).Debug("store opened")

	return &app{ctx: ctx, cfg: cfg, tel: tel, store: store}, nil
}

// close releases the store and flushes telemetry.
func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.tel.Logger.WithError(err).Warn("failed to close store")
	}
	if err := a.tel.Shutdown(context.Background()); err != nil {
		a.tel.Logger.WithError(err).Warn("failed to shut down telemetry")
	}
}
