package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is loaded from the environment and an optional .env file.
type Config struct {
	Env                 string        `mapstructure:"ENV"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	LogFormat           string        `mapstructure:"LOG_FORMAT"`
	Port                int           `mapstructure:"PORT"`
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseFile   string `mapstructure:"DATABASE_FILE"` // sqlite
	DatabaseURL    string `mapstructure:"DATABASE_URL"`  // postgres

	// JWTSecret signs session tokens. Required outside dev.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Relying party. Empty RPID and RPOrigin are derived per request.
	RPName     string `mapstructure:"RP_NAME"`
	RPID       string `mapstructure:"RP_ID"`
	RPOrigin   string `mapstructure:"RP_ORIGIN"`
	TrustProxy bool   `mapstructure:"TRUST_PROXY"`
	PublicURL  string `mapstructure:"PUBLIC_URL"`

	ChallengeTTL     time.Duration `mapstructure:"CHALLENGE_TTL"`
	InviteDefaultTTL time.Duration `mapstructure:"INVITE_DEFAULT_TTL"`
	InviteMaxTTL     time.Duration `mapstructure:"INVITE_MAX_TTL"`

	CORSAllowOrigin string `mapstructure:"CORS_ALLOW_ORIGIN"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig reads .env (if present), then the environment. Env vars win.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_FILE", "passkey.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RP_NAME", "Camp Attendance")
	v.SetDefault("RP_ID", "")
	v.SetDefault("RP_ORIGIN", "")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("PUBLIC_URL", "")
	v.SetDefault("CHALLENGE_TTL", "5m")
	v.SetDefault("INVITE_DEFAULT_TTL", "24h")
	v.SetDefault("INVITE_MAX_TTL", "720h")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return errors.New("config: DATABASE_FILE must be set for sqlite")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set for postgres")
		}
	default:
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	if err := checkWholeHours("INVITE_DEFAULT_TTL", c.InviteDefaultTTL); err != nil {
		return err
	}
	if err := checkWholeHours("INVITE_MAX_TTL", c.InviteMaxTTL); err != nil {
		return err
	}
	if c.InviteMaxTTL < c.InviteDefaultTTL {
		return errors.New("config: INVITE_DEFAULT_TTL must not exceed INVITE_MAX_TTL")
	}
	if c.RPOrigin != "" && !strings.Contains(c.RPOrigin, "://") {
		return fmt.Errorf("config: RP_ORIGIN %q must include a scheme", c.RPOrigin)
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set outside dev")
	}
	return nil
}

// checkWholeHours guards the invite lifetimes, which the HTTP API counts in hours.
func checkWholeHours(key string, d time.Duration) error {
	if d < time.Hour || d%time.Hour != 0 {
		return fmt.Errorf("config: %s must be a whole number of hours, got %s", key, d)
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev"
}
