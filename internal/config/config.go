package config

import (
	"log/slog"
	"time"

	"github.com/Skotchmaster/admin_console/pkg/config"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
	CookieSecure  bool
	CSRFEnabled   bool

	JWTSecret []byte
	TokenTTL  time.Duration

	KafkaBrokers []string

	ESAddresses []string
	ESUser      string
	ESPassword  string
	ESIndex     string

	JuejinURL     string
	JuejinTimeout time.Duration

	AdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("env_file_skipped", "error", err)
	}

	cfg := &Config{
		HTTPAddr:      config.EnvDefault("HTTP_ADDR", ":8080"),
		LogLevel:      config.EnvDefault("LOG_LEVEL", "info"),
		DBDriver:      config.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:   config.EnvDefault("DATABASE_URL", ""),
		RedisAddr:     config.EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: config.EnvDefault("REDIS_PASSWORD", ""),
		RedisDB:       config.EnvIntDefault("REDIS_DB", 0),
		SessionTTL:    config.EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		CookieSecure:  config.EnvDefault("COOKIE_SECURE", "false") == "true",
		CSRFEnabled:   config.EnvDefault("CSRF_ENABLED", "false") == "true",
		JWTSecret:     []byte(config.EnvDefault("JWT_SECRET", "")),
		TokenTTL:      config.EnvDurationDefault("TOKEN_TTL", 72*time.Hour),
		KafkaBrokers:  config.CSV(config.EnvDefault("KAFKA_BROKERS", "")),
		ESAddresses:   config.CSV(config.EnvDefault("ES_URL", "")),
		ESUser:        config.EnvDefault("ES_USER", ""),
		ESPassword:    config.EnvDefault("ES_PASSWORD", ""),
		ESIndex:       config.EnvDefault("ES_INDEX", "operation_logs"),
		JuejinURL:     config.EnvDefault("JUEJIN_URL", ""),
		JuejinTimeout: config.EnvDurationDefault("JUEJIN_TIMEOUT", 10*time.Second),
		AdminPassword: config.EnvDefault("ADMIN_PASSWORD", ""),
	}

	if err := config.Required(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   string(cfg.JWTSecret),
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}
