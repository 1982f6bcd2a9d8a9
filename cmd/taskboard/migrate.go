package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/taskboard/internal/pkg/config"
	"github.com/sirpyerre/taskboard/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations (postgres) or ensure indexes (mongo)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  !cfg.IsProduction(),
				Service: "taskboard",
			})

			st, err := openStore(ctx, cfg.Store, log)
			if err != nil {
				return err
			}
			defer func() { _ = st.close(context.Background()) }()

			if err := st.migrate(ctx); err != nil {
				return fmt.Errorf("migrate %s: %w", st.name, err)
			}
			log.Info().Str("store", st.name).Msg("schema up to date")
			return nil
		},
	}
}
