package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/spf13/cobra"

	"github.com/kogsector/kgfusion/config"
	"github.com/kogsector/kgfusion/graphstore"
)

// newMigrateCmd applies the schema (tables, pgvector extension) and exits;
// the HNSW chunk index is created by CreateVectorIndex at app startup, matching the teacher's separate one-shot migrate subcommand
// rather than running migrations implicitly on every serve boot.
func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger(config.Defaults())
			cfg, err := config.NewLoader(logger).Load(*configPath)
			if err != nil {
				return err
			}

			poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("parse DATABASE_URL: %w", err)
			}
			poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
				return pgxvec.RegisterTypes(ctx, conn)
			}

			pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer pool.Close()

			if err := graphstore.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migration complete")
			return nil
		},
	}
}
