// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"chapterforge/local-app/src/pkg/model"
)

// Global variables to store the current configuration and its file path.
var (
	currentConfig *model.Config
	configPath    = "./data/config.json"
)

// ConfigLoad loads the configuration from the JSON file.
// If the file doesn't exist, it creates a default configuration.
// A .env file and environment variables override file values.
func ConfigLoad() error {
	// Ensure the data directory exists
	dataDir := filepath.Dir(configPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	// Check if the config file exists, if not create a default one
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := defaultConfig()
		if err := ConfigSave(defaultConfig); err != nil {
			return fmt.Errorf("failed to create default config: %v", err)
		}
		currentConfig = defaultConfig
		applyEnvOverrides(currentConfig)
		return nil
	}

	// Read and parse the existing config file
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	// Unmarshal the config from JSON
	currentConfig = &model.Config{}
	if err := json.Unmarshal(file, currentConfig); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	// Set default database type if not specified
	if currentConfig.DatabaseType == "" {
		currentConfig.DatabaseType = "sqlite"
		if err := ConfigSave(currentConfig); err != nil {
			return fmt.Errorf("failed to save updated config: %v", err)
		}
	}

	applyEnvOverrides(currentConfig)
	return nil
}

// ConfigSave saves the provided configuration to the JSON file.
func ConfigSave(cfg *model.Config) error {
	// Marshal the config to JSON
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %v", err)
	}

	// Write the JSON data to the config file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v", err)
	}

	return nil
}

// ConfigGet returns the current configuration.
func ConfigGet() *model.Config {
	return currentConfig
}

// defaultConfig returns the configuration used on first run.
func defaultConfig() *model.Config {
	return &model.Config{
		DatabaseDir:         "./data",
		DatabaseFile:        "chapterforge.db",
		DatabaseType:        "sqlite",
		LogFolder:           "./logs",
		CommandLog:          "commands.log",
		ErrorLog:            "errors.log",
		InfoLog:             "info.log",
		DefaultUser:         "a",
		DefaultUserActive:   true,
		DefaultUserPassword: "",
		InboxDir:            "./inbox",
		WatchInbox:          false,
		ExportDir:           "./exports",
	}
}

// applyEnvOverrides layers .env file values and environment variables over
// the loaded configuration. Variables already set in the environment take
// precedence over .env file values.
func applyEnvOverrides(cfg *model.Config) {
	_ = godotenv.Load()

	cfg.DatabaseDir = getEnv("CHAPTERFORGE_DB_DIR", cfg.DatabaseDir)
	cfg.DatabaseFile = getEnv("CHAPTERFORGE_DB_FILE", cfg.DatabaseFile)
	cfg.LogFolder = getEnv("CHAPTERFORGE_LOG_DIR", cfg.LogFolder)
	cfg.DefaultUser = getEnv("CHAPTERFORGE_DEFAULT_USER", cfg.DefaultUser)
	cfg.InboxDir = getEnv("CHAPTERFORGE_INBOX_DIR", cfg.InboxDir)
	cfg.ExportDir = getEnv("CHAPTERFORGE_EXPORT_DIR", cfg.ExportDir)
	if v := os.Getenv("CHAPTERFORGE_WATCH_INBOX"); v != "" {
		cfg.WatchInbox = v == "1" || v == "true"
	}
}

// getEnv retrieves an environment variable or returns the fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
