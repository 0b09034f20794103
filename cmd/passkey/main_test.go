package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// run executes the root command in-process. Commands share global flag
// state, so these tests are not parallel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passkey.db")
	t.Setenv("ENV", "dev")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_FILE", path)
	t.Setenv("PUBLIC_URL", "https://app.example/")
	return path
}

func TestInviteCreate(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "invite", "create", "--role", "admin", "--expires-in", "2h", "-o", "json")
	require.NoError(t, err)

	var got struct {
		ID          string `json:"id"`
		Role        string `json:"role"`
		InviteToken string `json:"inviteToken"`
		InviteURL   string `json:"inviteUrl"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, "admin", got.Role)
	require.NotEmpty(t, got.InviteToken)
	require.Equal(t, "https://app.example?invite="+got.InviteToken, got.InviteURL)

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := run(t, "invite", "create", "--role", "owner", "-o", "text")
		require.ErrorContains(t, err, "invalid role")
	})

	t.Run("rejects expiry beyond the maximum", func(t *testing.T) {
		_, err := run(t, "invite", "create", "--role", "user", "--expires-in", "10000h", "-o", "text")
		require.Error(t, err)
	})
}

func TestUserAndCredentialCommands(t *testing.T) {
	useTempDatabase(t)

	_, err := run(t, "user", "deactivate", "no-such-user", "-o", "text")
	require.ErrorContains(t, err, "user")

	_, err = run(t, "credential", "revoke", "no-such-credential", "-o", "text")
	require.Error(t, err)

	_, err = run(t, "credential", "list", "no-such-user", "-o", "text")
	require.Error(t, err)
}

func TestUserDelete(t *testing.T) {
	path := useTempDatabase(t)

	st, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	now := time.Now().UTC()
	require.NoError(t, st.Users().CreateUser(context.Background(), domain.User{
		ID: "u1", DisplayName: "Ada", Role: domain.RoleUser, Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.Close())

	out, err := run(t, "user", "delete", "u1", "-o", "json")
	require.NoError(t, err)
	require.JSONEq(t, `{"deletedUserId":"u1"}`, out)

	_, err = run(t, "user", "delete", "u1", "-o", "text")
	require.ErrorContains(t, err, "user not found")
}

func TestMigrateAndVersion(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "migrate", "-o", "text")
	require.NoError(t, err)
	require.Contains(t, out, "migrations applied (sqlite)")

	out, err = run(t, "version", "-o", "text")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "passkey version "))
}
