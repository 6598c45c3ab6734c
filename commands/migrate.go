package commands

import (
	"fmt"

	"github.com/ishikisiko/match-telemetry/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := db.Migrate(commandContext(cmd), a.db); err != nil {
			return err
		}
		a.logger.Info("schema applied")
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}
