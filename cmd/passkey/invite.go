package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/service"
	"github.com/spf13/cobra"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage registration invites",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a single-use invite without an admin session",
	Long: `Mint a single-use registration invite directly in the database.

This is how the first administrator is bootstrapped. The raw token is
printed once and cannot be recovered later.

Example:
  passkey invite create --role admin --expires-in 24h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		roleStr, _ := cmd.Flags().GetString("role")
		expiresIn, _ := cmd.Flags().GetDuration("expires-in")

		role := domain.Role(roleStr)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q (want admin or user)", roleStr)
		}

		env, err := openAdminEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		inv, err := env.services.Invites.Mint(cmd.Context(), role, expiresIn, "")
		if err != nil {
			return err
		}
		if env.cfg.PublicURL != "" {
			inv.URL = service.InviteURL(env.cfg.PublicURL, inv.Token)
		}

		out := struct {
			ID          string    `json:"id"`
			Role        string    `json:"role"`
			InviteToken string    `json:"inviteToken"`
			InviteURL   string    `json:"inviteUrl,omitempty"`
			ExpiresAt   time.Time `json:"expiresAt"`
		}{inv.Invite.ID, string(inv.Invite.Role), inv.Token, inv.URL, inv.Invite.ExpiresAt}

		return printResult(cmd.OutOrStdout(), out, func(w io.Writer) {
			fmt.Fprintf(w, "Invite:     %s\n", out.ID)
			fmt.Fprintf(w, "Role:       %s\n", out.Role)
			fmt.Fprintf(w, "Token:      %s\n", out.InviteToken)
			if out.InviteURL != "" {
				fmt.Fprintf(w, "URL:        %s\n", out.InviteURL)
			}
			fmt.Fprintf(w, "Expires at: %s\n", out.ExpiresAt.Format(time.RFC3339))
		})
	},
}

func init() {
	inviteCreateCmd.Flags().String("role", string(domain.RoleUser), "role granted on registration (admin, user)")
	inviteCreateCmd.Flags().Duration("expires-in", service.DefaultInviteTTL, "invite lifetime")
	inviteCmd.AddCommand(inviteCreateCmd)
}
