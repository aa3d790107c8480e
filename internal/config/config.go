// Package config provides unified configuration for the minirel server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the minirel server binary.
type Config struct {
	// DataDir is the database directory holding all table files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Backup configuration
	Backup BackupConfig `json:"backup" yaml:"backup"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the listen address for the API server
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// BackupConfig holds backup storage configuration.
type BackupConfig struct {
	// Type is the backup storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local backup directory (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is the object key prefix for backup snapshots
	Prefix string `json:"prefix" yaml:"prefix"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 backup configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/minirel",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Backup: BackupConfig{
			Type:   "local",
			Prefix: "snapshots",
		},
	}
}

// Resolve fills in unset defaults: DataDir, a backup path under DataDir,
// and the backup prefix. Paths are left as given (relative stays relative).
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/minirel"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = filepath.Join(c.DataDir, "backups")
	}
	if c.Backup.Prefix == "" {
		c.Backup.Prefix = "snapshots"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Backup.Type != "local" && c.Backup.Type != "s3" {
		return fmt.Errorf("invalid backup type: %s (must be local or s3)", c.Backup.Type)
	}
	if c.Backup.Type == "s3" && c.Backup.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when backup type is s3")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return cfg, nil
}

// LoadFromEnv applies MINIREL_* environment variable overrides.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("MINIREL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MINIREL_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("MINIREL_BACKUP_TYPE"); v != "" {
		cfg.Backup.Type = v
	}
	if v := os.Getenv("MINIREL_BACKUP_PATH"); v != "" {
		cfg.Backup.Path = v
	}
	if v := os.Getenv("MINIREL_BACKUP_PREFIX"); v != "" {
		cfg.Backup.Prefix = v
	}
	if v := os.Getenv("MINIREL_S3_BUCKET"); v != "" {
		cfg.Backup.S3.Bucket = v
	}
	if v := os.Getenv("MINIREL_S3_REGION"); v != "" {
		cfg.Backup.S3.Region = v
	}
	if v := os.Getenv("MINIREL_S3_ENDPOINT"); v != "" {
		cfg.Backup.S3.Endpoint = v
	}
}
