package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// EphemeralSecret is set when JWTSecret was generated at startup.
	// Tokens then stop verifying after a restart.
	EphemeralSecret bool

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
	HTTP  HTTPConfig
}

type AuthConfig struct {
	StaffCookie        string        `env:"STAFF_TOKEN_COOKIE,    default=staff_token"`
	StaffTokenTTL      time.Duration `env:"STAFF_TOKEN_TTL,       default=4h"`
	UserTokenTTL       time.Duration `env:"USER_TOKEN_TTL,        default=24h"`
	AccessCodeCacheTTL time.Duration `env:"ACCESS_CODE_CACHE_TTL, default=5m"`
	LoginRatePerMin    int           `env:"LOGIN_RATE_PER_MIN,    default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bgf_dashboard"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	Workers  int    `env:"EMAIL_WORKERS, default=2"`
}

type HTTPConfig struct {
	// FrontendOrigin enables CORS with credentials for the dashboard origin.
	FrontendOrigin string `env:"FRONTEND_ORIGIN"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("config: generate secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.EphemeralSecret = true
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required in production")
	}
	if c.Auth.StaffTokenTTL <= 0 || c.Auth.UserTokenTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if c.Auth.StaffCookie == "" {
		return errors.New("config: STAFF_TOKEN_COOKIE must not be empty")
	}
	if c.SMTP.Workers < 1 {
		return errors.New("config: EMAIL_WORKERS must be at least 1")
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
