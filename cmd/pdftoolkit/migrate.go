package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/pdftoolkit/internal/database"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := cmd.Context()
			if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
				return err
			}
			v, err := database.MigrationVersion(ctx, db, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database migrated to version %d\n", v)
			return nil
		},
	}
}
