package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/passkey/pkg/cryptox"
	"github.com/aussiebroadwan/passkey/pkg/jwtx"
)

// sessionSecret returns the HS256 secret. In dev an empty JWT_SECRET gets a
// random per-process secret, so tokens do not survive a restart.
func sessionSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		if len(cfg.JWTSecret) < jwtx.MinSecretSize {
			return nil, fmt.Errorf("JWT_SECRET: %w", jwtx.ErrWeakSecret)
		}
		return []byte(cfg.JWTSecret), nil
	}

	if !cfg.IsDev() {
		return nil, fmt.Errorf("JWT_SECRET must be set when ENV=%s", cfg.Env)
	}

	secret, err := cryptox.RandomBytes(jwtx.MinSecretSize)
	if err != nil {
		return nil, err
	}
	logger.Warn("JWT_SECRET not set, using an ephemeral secret; sessions end on restart")
	return secret, nil
}
