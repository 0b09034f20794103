package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/aussiebroadwan/passkey/internal/passkey/app"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := map[string]string{
			"version":    app.BuildVersion,
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		}
		return printResult(cmd.OutOrStdout(), info, func(w io.Writer) {
			fmt.Fprintf(w, "passkey version %s\n", info["version"])
			fmt.Fprintf(w, "Go version: %s\n", info["go_version"])
			fmt.Fprintf(w, "OS/Arch: %s/%s\n", info["os"], info["arch"])
		})
	},
}
