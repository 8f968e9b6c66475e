package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the process settings shared by the api, worker and consumer binaries.
type Config struct {
	Port   string
	AppEnv string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr string

	KafkaBroker  string
	KafkaGroupID string

	JWTSecret string

	InvitationTTL       time.Duration
	OutboxPollInterval  time.Duration
	InvitationSweepSpec string
	GrantCacheTTL       time.Duration
	ConnectRetries      int
}

// Load reads the environment. Call godotenv.Load before it to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		KafkaBroker:  os.Getenv("KAFKA_BROKER"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "diligince-notification-relay"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		InvitationSweepSpec: getEnv("INVITATION_SWEEP_SPEC", "@every 1h"),
	}

	var err error
	if cfg.InvitationTTL, err = getDuration("INVITATION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OutboxPollInterval, err = getDuration("OUTBOX_POLL_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.GrantCacheTTL, err = getDuration("GRANT_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ConnectRetries, err = getInt("CONNECT_RETRIES", 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("DB_HOST, DB_USER and DB_NAME are required")
	}
	if c.InvitationTTL <= 0 {
		return errors.New("INVITATION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
