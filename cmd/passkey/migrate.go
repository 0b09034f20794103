package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", env.cfg.DatabaseDriver)
		return nil
	},
}
