/* config.go
 * Contains the configuration for the client, store, bot and web server. Values are read from the environment,
 * after loading a .env file when one exists
 */

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"numerai-bot/api/validate"

	"github.com/joho/godotenv"
)

const DefaultBaseURL = "https://api.numer.ai"

// Config holds all configuration for the application
type Config struct {
	Numerai NumeraiConfig
	Mongo   MongoConfig
	Discord DiscordConfig
	Server  ServerConfig
}

// NumeraiConfig holds the API client configuration
type NumeraiConfig struct {
	BaseURL           string        `validate:"required,url"`
	Email             string        `validate:"required,email"`
	Password          string        `validate:"required"`
	Timeout           time.Duration `validate:"gt=0"`
	RequestsPerSecond float64       `validate:"gt=0"`
	Burst             int           `validate:"gte=1"`
	StrictSchema      bool
}

// MongoConfig holds the snapshot store configuration. An empty URI disables the store
type MongoConfig struct {
	URI      string
	Database string `validate:"required"`
}

type DiscordConfig struct {
	Token string
}

type ServerConfig struct {
	Addr string `validate:"required"`
}

// Load loads configuration from environment variables
// Preconditions: NUMERAI_API_EMAIL and NUMERAI_API_PASSWORD are set in the environment or in .env
// Postconditions: Returns the validated Config, or an error naming the invalid fields
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the Config from the current environment without touching .env
func FromEnv() (*Config, error) {
	cfg := &Config{
		Numerai: NumeraiConfig{
			BaseURL:           strings.TrimRight(getEnv("NUMERAI_API_URL", DefaultBaseURL), "/"),
			Email:             getEnv("NUMERAI_API_EMAIL", ""),
			Password:          getEnv("NUMERAI_API_PASSWORD", ""),
			Timeout:           time.Duration(getEnvAsInt("NUMERAI_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
			RequestsPerSecond: getEnvAsFloat("NUMERAI_REQUESTS_PER_SECOND", 2),
			Burst:             getEnvAsInt("NUMERAI_REQUEST_BURST", 1),
			StrictSchema:      getEnvAsBool("NUMERAI_STRICT_SCHEMA", false),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("NUMERAI_MONGO_DB", "numerai"),
		},
		Discord: DiscordConfig{
			Token: getEnv("DISCORD_TOKEN", ""),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return value
	}
	return defaultValue
}
