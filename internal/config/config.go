package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Knopersikcuo/printmanager/internal/store"
)

// Config holds the process-level settings read from the environment.
type Config struct {
	DataDir  string
	LogLevel string
}

// Load reads an optional .env file and resolves the process configuration.
// PRINTMANAGER_DATA_DIR overrides the default data directory;
// PRINTMANAGER_LOG_LEVEL defaults to "info".
func Load() (Config, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := Config{
		DataDir:  os.Getenv("PRINTMANAGER_DATA_DIR"),
		LogLevel: os.Getenv("PRINTMANAGER_LOG_LEVEL"),
	}
	if cfg.DataDir == "" {
		dir, err := store.DefaultDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
