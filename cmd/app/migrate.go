package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cledumemoire/internal/config"
	pg "cledumemoire/internal/infra/db/postgres"
	"cledumemoire/internal/infra/logging"
)

func migrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Apply the embedded Postgres schema. Every statement is idempotent,
so the command can run on each deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.New(cfg.Log, cfg.Runtime.Dev)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer pool.Close()

			if err := pg.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info().Msg("schema applied")
			return nil
		},
	}
}
