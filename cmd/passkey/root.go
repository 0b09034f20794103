package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/passkey/internal/passkey/app"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/spf13/cobra"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "passkey",
	Short: "Passkey (WebAuthn) authentication service",
	Long: `passkey runs the invite-only WebAuthn registration and login service
and provides the administrative commands that operate on its database.

Configuration is read from the environment and an optional .env file in
the working directory. See DATABASE_DRIVER, DATABASE_FILE, DATABASE_URL,
JWT_SECRET, RP_ID, RP_ORIGIN and PUBLIC_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"output format (text, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(versionCmd)
}

// adminEnv is what every offline command needs: config, a logger and an
// open, migrated store.
type adminEnv struct {
	cfg      app.Config
	logger   *slog.Logger
	db       store.Store
	services app.Services
}

// openAdminEnv loads config and opens the store. Callers must call close.
func openAdminEnv(ctx context.Context) (*adminEnv, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	db, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// No signer: offline commands never mint sessions.
	services, err := app.NewServices(ctx, cfg, db, nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &adminEnv{cfg: cfg, logger: logger, db: db, services: services}, nil
}

func (e *adminEnv) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// printResult writes v as JSON when -o json is set, else calls text.
func printResult(w io.Writer, v any, text func(io.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}
