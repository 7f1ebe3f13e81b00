package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings read at startup.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	RabbitMQURL    string
	RedisAddr      string
	IdempotencyTTL time.Duration
	AdminUsername  string
	AdminEmail     string
	AdminPassword  string
	SeedCatalog    bool
	LogLevel       string
}

// RabbitMQEnabled reports whether order events should be published.
func (c Config) RabbitMQEnabled() bool { return c.RabbitMQURL != "" }

// RedisEnabled reports whether idempotency keys should be stored in Redis.
func (c Config) RedisEnabled() bool { return c.RedisAddr != "" }

// New returns a viper instance with every default set, reading overrides from the environment.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "watchshop.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SEED_CATALOG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv() // Load environment variables
	return v
}

// Load reads a .env file when one exists, then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromViper(New())
}

// FromViper builds a Config from v.
func FromViper(v *viper.Viper) Config {
	ttl := v.GetDuration("IDEMPOTENCY_TTL")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		IdempotencyTTL: ttl,
		AdminUsername:  v.GetString("ADMIN_USERNAME"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		SeedCatalog:    v.GetBool("SEED_CATALOG"),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}
}
