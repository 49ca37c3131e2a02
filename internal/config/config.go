// Package config loads server settings from the environment, with .env
// support for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port     string
	LogLevel string

	// Firebase credentials. When neither source is set the server falls
	// back to the in-memory store and account set.
	CredentialsPath string
	CredentialsJSON string
	WebAPIKey       string
}

// Load reads .env when present (missing file is fine, the environment wins)
// and applies defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            os.Getenv("PORT"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		CredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		CredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
		WebAPIKey:       os.Getenv("FIREBASE_WEB_API_KEY"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

// HasFirebase reports whether any Firebase credential source is configured.
func (c Config) HasFirebase() bool {
	return c.CredentialsPath != "" || c.CredentialsJSON != ""
}
