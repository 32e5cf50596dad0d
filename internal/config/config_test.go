package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_SettingsFile(t *testing.T) {
	path := writeSettings(t, `{
		"api_key": "secret",
		"submission_url": "https://intake.example.org/submission",
		"archive_prefix": "ark_",
		"default_format": "xml",
		"default_hash": "md5"
	}`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "https://intake.example.org/submission", cfg.SubmissionURL)
	assert.Equal(t, "ark_", cfg.ArchivePrefix)
	assert.Equal(t, "xml", cfg.DefaultFormat)
	assert.Equal(t, "md5", cfg.DefaultAlgorithm)
	assert.Equal(t, "fs", cfg.Storage.Provider)
	assert.Equal(t, time.Duration(0), cfg.HTTP.Timeout)
}

func TestLoadFrom_EnvironmentWins(t *testing.T) {
	path := writeSettings(t, `{
		"api_key": "from-file",
		"submission_url": "https://intake.example.org/submission"
	}`)

	t.Setenv("API_KEY", "from-env")
	t.Setenv("HTTP_TIMEOUT", "45s")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
}

func TestLoadFrom_MissingFileIsFine(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("SUBMISSION_URL", "https://intake.example.org/submission")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestLoadFrom_MalformedFile(t *testing.T) {
	path := writeSettings(t, `{not json`)

	_, err := LoadFrom(path)
	assert.ErrorIs(t, err, ErrSettingsNotParsable)
}

func TestLoadFrom_MissingRequiredKeys(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("SUBMISSION_URL", "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv("API_KEY", "secret")
	_, err = LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, ErrMissingSubmissionURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIKey:           "k",
			SubmissionURL:    "https://intake.example.org/submission",
			DefaultFormat:    "json",
			DefaultAlgorithm: "sha256",
			Storage:          StorageConfig{Provider: "fs"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad format", func(c *Config) { c.DefaultFormat = "yaml" }, true},
		{"bad algorithm", func(c *Config) { c.DefaultAlgorithm = "crc32" }, true},
		{"bad provider", func(c *Config) { c.Storage.Provider = "ftp" }, true},
		{"s3 without bucket", func(c *Config) { c.Storage.Provider = "s3" }, true},
		{"s3 with bucket", func(c *Config) {
			c.Storage.Provider = "s3"
			c.Storage.S3.Bucket = "archive"
		}, false},
		{"bad url", func(c *Config) { c.SubmissionURL = "::not-a-url" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
