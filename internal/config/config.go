// Package config builds the immutable process configuration for a run.
//
// Settings come from two sources, in order of precedence: environment
// variables (with optional .env file support) and the user's settings file
// at ~/.smartarkivering/config.json. Load returns an explicit *Config that
// callers pass by reference into every component; there is no package-level
// configuration state.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// SettingsFile is the location of the user settings file, relative to the
// user's home directory.
const SettingsFile = ".smartarkivering/config.json"

var (
	ErrMissingAPIKey        = errors.New("api key is not configured")
	ErrMissingSubmissionURL = errors.New("submission base url is not configured")
	ErrSettingsNotParsable  = errors.New("settings file is not valid json")
)

// Config holds all process-wide settings for one run.
type Config struct {
	// APIKey is appended to every request against the intake API.
	APIKey string
	// SubmissionURL is the base URL of the submission endpoint.
	SubmissionURL string

	// Defaults applied when the CLI doesn't override them.
	DefaultDestination string
	DefaultFormat      string
	DefaultAlgorithm   string

	// ArchivePrefix is the field-namespace prefix retained (and stripped)
	// during projection.
	ArchivePrefix string

	LogLevel string

	HTTP    HTTPConfig
	Storage StorageConfig
	History HistoryConfig
}

// HTTPConfig holds settings for the outbound HTTP client.
type HTTPConfig struct {
	// Timeout of zero means the transport default (no timeout).
	Timeout   time.Duration
	UserAgent string
}

// StorageConfig selects and configures the destination backend.
type StorageConfig struct {
	// Provider is "fs" (default) or "s3".
	Provider string
	S3       S3Config
}

// S3Config holds credentials and addressing for the S3 backend.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// HistoryConfig configures the local ingest-history database.
type HistoryConfig struct {
	// Path of the SQLite file. Empty disables history recording.
	Path string
}

// Load builds the configuration from the default settings file location,
// the environment and an optional .env file.
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	return LoadFrom(filepath.Join(home, SettingsFile))
}

// LoadFrom builds the configuration using the given settings file. The file
// is optional; environment variables always win over file values.
func LoadFrom(settingsPath string) (*Config, error) {
	// A .env next to the working directory is a convenience for local use,
	// mirroring how the values would be injected in a managed environment.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	settings, err := readSettingsFile(settingsPath)
	if err != nil {
		return nil, err
	}
	src := &source{settings: settings}

	home, _ := os.UserHomeDir()
	cfg := &Config{
		APIKey:        src.get("API_KEY", "api_key", ""),
		SubmissionURL: src.get("SUBMISSION_URL", "submission_url", ""),

		DefaultDestination: src.get("DEFAULT_DESTINATION", "default_destination",
			filepath.Join(home, "Downloads", "Smartarkivering")),
		DefaultFormat:    src.get("DEFAULT_FORMAT", "default_format", "json"),
		DefaultAlgorithm: src.get("DEFAULT_HASH", "default_hash", "sha256"),

		ArchivePrefix: src.get("ARCHIVE_PREFIX", "archive_prefix", ""),

		LogLevel: src.get("LOG_LEVEL", "log_level", "info"),

		HTTP: HTTPConfig{
			Timeout:   src.getDuration("HTTP_TIMEOUT", "http_timeout", 0),
			UserAgent: src.get("HTTP_USER_AGENT", "http_user_agent", "smart-client/0.3"),
		},

		Storage: StorageConfig{
			Provider: src.get("STORAGE_PROVIDER", "storage_provider", "fs"),
			S3: S3Config{
				Region:          src.get("AWS_REGION", "aws_region", "eu-west-1"),
				Bucket:          src.get("S3_BUCKET", "s3_bucket", ""),
				AccessKeyID:     src.get("AWS_ACCESS_KEY_ID", "aws_access_key_id", ""),
				SecretAccessKey: src.get("AWS_SECRET_ACCESS_KEY", "aws_secret_access_key", ""),
				Endpoint:        src.get("S3_ENDPOINT", "s3_endpoint", ""),
			},
		},

		History: HistoryConfig{
			Path: src.get("HISTORY_DB", "history_db",
				filepath.Join(home, ".smartarkivering", "history.db")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and well-formed.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.SubmissionURL == "" {
		return ErrMissingSubmissionURL
	}
	if _, err := url.ParseRequestURI(c.SubmissionURL); err != nil {
		return fmt.Errorf("submission base url is not a valid url: %w", err)
	}

	switch c.DefaultFormat {
	case "json", "xml", "arkibas":
	default:
		return fmt.Errorf("unknown default format: %q", c.DefaultFormat)
	}

	switch c.DefaultAlgorithm {
	case "md5", "sha256":
	default:
		return fmt.Errorf("unknown default checksum algorithm: %q", c.DefaultAlgorithm)
	}

	switch c.Storage.Provider {
	case "fs":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage provider s3 requires a bucket")
		}
	default:
		return fmt.Errorf("unknown storage provider: %q", c.Storage.Provider)
	}

	return nil
}

// readSettingsFile reads the optional user settings file into a flat
// key/value map. A missing file is not an error; a malformed one is.
func readSettingsFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSettingsNotParsable, path, err)
	}

	settings := make(map[string]string, len(decoded))
	for k, v := range decoded {
		settings[k] = fmt.Sprintf("%v", v)
	}
	return settings, nil
}
