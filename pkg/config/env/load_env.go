package env

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

const (
	// PathVar overrides the default .env location.
	PathVar = "ENV_PATH"
	// ModeVar selects the environment; "local" requires the .env file to exist.
	ModeVar = "APP_ENV"
)

// LoadDotEnv loads variables from a .env file without overriding ones already set.
// A missing file is an error only in local mode.
func LoadDotEnv(defaultPath string) error {
	envPath := os.Getenv(PathVar)
	if envPath == "" {
		slog.Debug("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	err := godotenv.Load(envPath)
	if err == nil {
		slog.Info("Loaded environment file", "path", envPath)
		return nil
	}

	if mode := os.Getenv(ModeVar); mode == "local" && errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to load environment variables in local mode", "error", err)
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("parse %s: %w", envPath, err)
	}

	slog.Debug("Skipping .env ...", "path", envPath)
	return nil
}
