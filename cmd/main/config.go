package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

// AppConfig holds the settings that are not model hyperparameters.
type AppConfig struct {
	LogLevel     string `json:"log_level"`
	WorkDir      string `json:"work_dir"`
	DatabasePath string `json:"database_path"`
	RecordRuns   bool   `json:"record_runs"`
	ServeAddr    string `json:"serve_addr"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	App   *AppConfig    `json:"app_config"`
	Model *ngram.Config `json:"model_config"`
}

// DefaultAppConfig creates an application configuration with default values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:     "info",
		WorkDir:      "work",
		DatabasePath: "./work/runs.db",
		RecordRuns:   true,
		ServeAddr:    ":7447",
	}
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	model := ngram.DefaultConfig()
	return &Config{
		App:   DefaultAppConfig(),
		Model: &model,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Defaults still work without the file.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	// A section set to null in the file falls back to its defaults.
	if config.App == nil {
		config.App = DefaultAppConfig()
	}
	if config.Model == nil {
		model := ngram.DefaultConfig()
		config.Model = &model
	}
	if err = config.Model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model_config in %s: %w", path, err)
	}
	return config, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
