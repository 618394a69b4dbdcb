package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override the YAML configuration.
const (
	EnvInputDir    = "FRAUDAGG_INPUT_DIR"
	EnvOutputDir   = "FRAUDAGG_OUTPUT_DIR"
	EnvAuditDriver = "FRAUDAGG_AUDIT_DRIVER"
	EnvAuditPath   = "FRAUDAGG_AUDIT_PATH"
	EnvLogLevel    = "LOG_LEVEL"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides replaces config values with any set override variables.
func ApplyEnvOverrides(config *MainConfig) {
	config.InputDir = getEnv(EnvInputDir, config.InputDir)
	config.OutputDir = getEnv(EnvOutputDir, config.OutputDir)
	config.Audit.Driver = getEnv(EnvAuditDriver, config.Audit.Driver)
	config.Audit.Path = getEnv(EnvAuditPath, config.Audit.Path)
	config.LogLevel = getEnv(EnvLogLevel, config.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
