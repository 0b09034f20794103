package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/aussiebroadwan/passkey/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestSessionSecret(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("configured", func(t *testing.T) {
		got, err := sessionSecret(Config{JWTSecret: "0123456789abcdef0123456789abcdef"}, logger)
		require.NoError(t, err)
		require.Equal(t, []byte("0123456789abcdef0123456789abcdef"), got)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := sessionSecret(Config{JWTSecret: "short"}, logger)
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})

	t.Run("ephemeral in dev", func(t *testing.T) {
		a, err := sessionSecret(Config{Env: "dev"}, logger)
		require.NoError(t, err)
		b, err := sessionSecret(Config{Env: "dev"}, logger)
		require.NoError(t, err)
		require.Len(t, a, jwtx.MinSecretSize)
		require.NotEqual(t, a, b)
	})

	t.Run("required in prod", func(t *testing.T) {
		_, err := sessionSecret(Config{Env: "prod"}, logger)
		require.Error(t, err)
	})
}
