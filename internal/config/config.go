package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string // sqlite, postgres, pgx, mysql
	DatabasePath    string // sqlite file path
	DatabaseURL     string // DSN for postgres/pgx/mysql
	SessionSecret   string
	SessionDuration time.Duration
	AppBaseURL      string
	Timezone        string
	LogLevel        string
	LogFormat       string

	GoogleClientID     string
	GoogleClientSecret string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	LoginRatePerMinute int
	PanelRatePerSecond int
	TrustedProxies     []string // CIDRs or IPs whose X-Forwarded-For is honoured
}

// MinSessionSecretLength is the shortest SESSION_SECRET the server accepts
const MinSessionSecretLength = 32

// Load reads configuration from the environment, after loading a .env file when one exists
func Load() *Config {
	// A missing .env is the normal case in production
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./queridodiario.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionDuration: getDuration("SESSION_DURATION", 30*24*time.Hour),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Querido Diário"),

		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
		PanelRatePerSecond: getInt("PANEL_RATE_PER_SECOND", 10),
		TrustedProxies:     getList("TRUSTED_PROXIES"),
	}
}

// ValidateServer checks the settings the HTTP server cannot run without. The
// session secret signs admin cookies and CSRF tokens, so there is no default.
func (c *Config) ValidateServer() error {
	secret := strings.TrimSpace(c.SessionSecret)
	if secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLength)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
