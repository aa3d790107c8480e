package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()

	cfg.Backup.Type = "ftp"
	assert.Error(t, cfg.Validate())

	cfg.Backup.Type = "s3"
	assert.Error(t, cfg.Validate(), "s3 backup requires a bucket")

	cfg.Backup.S3.Bucket = "backups"
	assert.NoError(t, cfg.Validate())
}

func TestResolveDefaultsBackupPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/minirel"}
	cfg.Resolve()
	assert.Equal(t, filepath.Join("/var/lib/minirel", "backups"), cfg.Backup.Path)
	assert.Equal(t, "snapshots", cfg.Backup.Prefix)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /data/db\nhttp:\n  addr: \":9999\"\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/db", cfg.DataDir)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	// Unspecified fields keep their defaults.
	assert.Equal(t, "local", cfg.Backup.Type)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data_dir": "/data/db"}`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/db", cfg.DataDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MINIREL_DATA_DIR", "/env/db")
	t.Setenv("MINIREL_HTTP_ADDR", ":7070")
	t.Setenv("MINIREL_S3_BUCKET", "env-bucket")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, "/env/db", cfg.DataDir)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "env-bucket", cfg.Backup.S3.Bucket)
}
