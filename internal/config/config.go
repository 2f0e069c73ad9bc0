package config

import (
	"fmt"
	"os"

	"robotoff/internal/logger"
	"robotoff/internal/resource"
)

type Config struct {
	// Reference data configuration. When DataDir is set, dictionary and
	// taxonomy files are read from disk instead of the embedded copies.
	DataDir string

	// Google Cloud Configuration (only required by the ocr command)
	GoogleCredentials            string
	GoogleApplicationCredentials string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DataDir:                      getEnv("DATA_DIR", ""),
		GoogleCredentials:            getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleApplicationCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		LogLevel:                     getEnv("LOG_LEVEL", "info"),
		LogFormat:                    getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:                getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                    getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if config.DataDir != "" {
		resource.SetDataDir(config.DataDir)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.DataDir != "" {
		info, err := os.Stat(c.DataDir)
		if err != nil {
			return fmt.Errorf("DATA_DIR %q is not readable: %w", c.DataDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("DATA_DIR %q is not a directory", c.DataDir)
		}
	}
	return nil
}

// HasGoogleCredentials reports whether any credential source for the
// Vision API is configured.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleCredentials != "" || c.GoogleApplicationCredentials != ""
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
