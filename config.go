package library

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration, loaded once at startup and
// injected where needed; nothing reads the environment after Load.
type Config struct {
	Port       string
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
	DSN        string
	ViewsDir   string
	Debug      bool
}

// LoadConfig reads configuration from the environment, with a
// best-effort .env file for local development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		SigningKey: getEnv("SIGNING_KEY", ""),
		Issuer:     getEnv("TOKEN_ISSUER", "book-library-manager"),
		TokenTTL:   time.Duration(getEnvAsInt("TOKEN_TTL_MINUTES", 30)) * time.Minute,
		DSN:        getEnv("DATABASE_DSN", "file:manager.db?_pragma=foreign_keys(1)"),
		ViewsDir:   getEnv("VIEWS_DIR", "views"),
		Debug:      getEnv("DEBUG", "") != "",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations that would silently weaken auth.
func (c *Config) Validate() error {
	if c.SigningKey == "" {
		return fmt.Errorf("SIGNING_KEY is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
