package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Block a user from logging in",
	Long: `Deactivate a user. Their credentials are kept and already-issued
session tokens stay valid until they expire, but every new login fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserActive(cmd, args[0], false)
	},
}

var userActivateCmd = &cobra.Command{
	Use:   "activate <user-id>",
	Short: "Re-enable a deactivated user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserActive(cmd, args[0], true)
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user and their passkeys",
	Long: `Delete a user. Their credentials are removed with them; invites they
created or redeemed are kept with the reference cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if err := env.services.Users.Delete(cmd.Context(), "", args[0]); err != nil {
			return err
		}
		out := struct {
			DeletedUserID string `json:"deletedUserId"`
		}{args[0]}
		return printResult(cmd.OutOrStdout(), out, func(w io.Writer) {
			fmt.Fprintf(w, "user %s deleted\n", args[0])
		})
	},
}

func setUserActive(cmd *cobra.Command, userID string, active bool) error {
	env, err := openAdminEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.services.Users.SetActive(cmd.Context(), userID, active); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user %s %s\n", userID, state)
	return nil
}

var credentialCmd = &cobra.Command{
	Use:     "credential",
	Aliases: []string{"cred"},
	Short:   "Manage registered passkeys",
}

var credentialListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's active passkeys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		creds, err := env.services.Users.ListCredentials(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		type row struct {
			ID         string     `json:"id"`
			Algorithm  int64      `json:"algorithm"`
			SignCount  uint32     `json:"signCount"`
			Transports []string   `json:"transports"`
			LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
			CreatedAt  time.Time  `json:"createdAt"`
		}
		rows := make([]row, 0, len(creds))
		for _, c := range creds {
			rows = append(rows, row{c.ID, c.Algorithm, c.SignCount, c.Transports, c.LastUsedAt, c.CreatedAt})
		}

		return printResult(cmd.OutOrStdout(), rows, func(w io.Writer) {
			if len(rows) == 0 {
				fmt.Fprintln(w, "no active credentials")
				return
			}
			fmt.Fprintf(w, "%-26s  %-4s  %-10s  %-20s  %s\n", "ID", "ALG", "COUNT", "CREATED", "TRANSPORTS")
			for _, r := range rows {
				fmt.Fprintf(w, "%-26s  %-4d  %-10d  %-20s  %s\n",
					r.ID, r.Algorithm, r.SignCount, r.CreatedAt.Format(time.RFC3339), strings.Join(r.Transports, ","))
			}
		})
	},
}

var credentialRevokeCmd = &cobra.Command{
	Use:   "revoke <credential-id>",
	Short: "Permanently revoke a passkey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openAdminEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if err := env.services.Users.RevokeCredential(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "credential %s revoked\n", args[0])
		return nil
	},
}

func init() {
	userCmd.AddCommand(userDeactivateCmd)
	userCmd.AddCommand(userActivateCmd)
	userCmd.AddCommand(userDeleteCmd)

	credentialCmd.AddCommand(credentialListCmd)
	credentialCmd.AddCommand(credentialRevokeCmd)
}
