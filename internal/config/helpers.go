package config

import (
	"os"
	"time"
)

// source resolves a setting from the environment first, then the settings
// file, then a built-in default.
type source struct {
	settings map[string]string
}

func (s *source) get(envKey, fileKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if value, ok := s.settings[fileKey]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s *source) getDuration(envKey, fileKey string, defaultValue time.Duration) time.Duration {
	value := s.get(envKey, fileKey, "")
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
