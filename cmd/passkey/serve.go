package main

import (
	"github.com/aussiebroadwan/passkey/internal/passkey/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Run the passkey HTTP service until SIGINT or SIGTERM.

Migrations are applied on startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}

		application, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return application.Run()
	},
}
