package main

import (
	"errors"
	"fmt"

	"github.com/phrazzld/genflow/internal/platform/postgres"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("no database configured: set database.url or GENFLOW_DATABASE_URL")

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Apply or inspect PostgreSQL schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Database.URL == "" {
				return errNoDatabase
			}

			db, err := postgres.Open(cmd.Context(), c.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					c.logger.Error("failed to close database", "error", err)
				}
			}()

			if err := postgres.Migrate(cmd.Context(), db, args[0], c.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", args[0])
			return nil
		},
	}
}
