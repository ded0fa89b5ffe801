package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolDeployer/internal/config"
	"poolDeployer/internal/storage/postgres"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg-dsn is required")
	}
	down, _ := cmd.Flags().GetInt("down")
	if down < 0 {
		return fmt.Errorf("down must be non-negative")
	}

	version, err := postgres.Migrate(cfg.PGDSN, -down)
	if err != nil {
		return err
	}
	logger.Info("schema migrated", zap.Uint("version", version), zap.Int("down", down))
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
