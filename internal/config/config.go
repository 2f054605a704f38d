// Package config loads publisher configuration from an optional YAML file
// with environment-variable overrides. Command-line flags are applied on
// top by the CLI layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API        APIConfig        `yaml:"api"`
	Auth       AuthConfig       `yaml:"auth"`
	Publish    PublishConfig    `yaml:"publish"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Notify     NotifyConfig     `yaml:"notify"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type PublishConfig struct {
	Package        string   `yaml:"package"`
	Artifacts      []string `yaml:"artifacts"` // paths or glob patterns
	Track          string   `yaml:"track"`
	UserFraction   float64  `yaml:"user_fraction"`
	MetadataRoot   string   `yaml:"metadata_root"`
	ChangelogFile  string   `yaml:"changelog_file"`
	Language       string   `yaml:"language"` // language for a standalone changelog file
	AbortOnFailure bool     `yaml:"abort_on_failure"`
}

type CheckpointConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type NotifyConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	BackupDir string `yaml:"backup_dir"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://editstore.googleapis.com/v3",
			Timeout: 5 * time.Minute,
		},
		Publish: PublishConfig{
			Track:    "internal",
			Language: "en-US",
		},
		Checkpoint: CheckpointConfig{
			Enabled: true,
			Dir:     ".stagehand",
		},
		Notify: NotifyConfig{
			BackupDir: ".stagehand/receipts",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load reads configuration from the given YAML file (optional, "" skips the
// file entirely) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides config fields from STAGEHAND_* environment variables.
func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getenvDefault("STAGEHAND_API_URL", cfg.API.BaseURL)
	cfg.Auth.CredentialsFile = getenvDefault("STAGEHAND_CREDENTIALS", cfg.Auth.CredentialsFile)
	cfg.Publish.Package = getenvDefault("STAGEHAND_PACKAGE", cfg.Publish.Package)
	cfg.Publish.Track = getenvDefault("STAGEHAND_TRACK", cfg.Publish.Track)
	cfg.Publish.MetadataRoot = getenvDefault("STAGEHAND_METADATA_ROOT", cfg.Publish.MetadataRoot)
	cfg.Checkpoint.Dir = getenvDefault("STAGEHAND_CHECKPOINT_DIR", cfg.Checkpoint.Dir)
	cfg.Notify.Endpoint = getenvDefault("STAGEHAND_NOTIFY_ENDPOINT", cfg.Notify.Endpoint)
	cfg.Log.Format = getenvDefault("STAGEHAND_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = getenvDefault("STAGEHAND_LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("STAGEHAND_USER_FRACTION"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Publish.UserFraction = parsed
		}
	}
	if v := os.Getenv("STAGEHAND_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = parsed
		}
	}
	if v := os.Getenv("STAGEHAND_NOTIFY_ENABLED"); v != "" {
		cfg.Notify.Enabled = v == "true"
	}
	if v := os.Getenv("STAGEHAND_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true"
	}
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
