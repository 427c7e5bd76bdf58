package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Oracle   OracleConfig
	Naming   NamingConfig
	Pipeline PipelineConfig
	Database DatabaseConfig
}

// OracleConfig covers both OpenAI-backed oracles.
type OracleConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// NamingConfig holds the filename template and date fallbacks.
type NamingConfig struct {
	Prefix        string
	SubdirPrefix  string
	Subfolder     bool
	FallbackMonth string
	FallbackYear  string
}

// PipelineConfig holds batch behavior knobs.
type PipelineConfig struct {
	ReceiptsDir string
	Workers     int
}

// DatabaseConfig locates the SQLite run index.
type DatabaseConfig struct {
	Path string
}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Oracle: OracleConfig{
			APIKey:      getEnv("OPEN_API_DEV_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 500),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.2),
		},
		Naming: NamingConfig{
			Prefix:        getEnv("RECEIPTS_PREFIX", "BFF"),
			SubdirPrefix:  getEnv("RECEIPTS_SUBDIR_PREFIX", "PCEF"),
			Subfolder:     getEnvAsBool("RECEIPTS_RENAME_SUBFOLDER", true),
			FallbackMonth: getEnv("RECEIPTS_FALLBACK_MONTH", "01"),
			FallbackYear:  getEnv("RECEIPTS_FALLBACK_YEAR", "2025"),
		},
		Pipeline: PipelineConfig{
			ReceiptsDir: getEnv("RECEIPTS_DIR", "receipts"),
			Workers:     getEnvAsInt("RECEIPTS_WORKERS", 1),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/receipts.db"),
		},
	}
}

// Validate fails fast on missing required configuration, before any document
// is touched.
func (c *Config) Validate() error {
	if c.Oracle.APIKey == "" {
		return fmt.Errorf("OPEN_API_DEV_KEY environment variable is not set")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("RECEIPTS_WORKERS must be at least 1")
	}
	if len(c.Naming.FallbackMonth) != 2 || len(c.Naming.FallbackYear) != 4 {
		return fmt.Errorf("fallback month/year must be MM and YYYY")
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
