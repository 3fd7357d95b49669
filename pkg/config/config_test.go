package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/compression"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8086", cfg.Server.Address)
	assert.Equal(t, compression.Gzip, cfg.Compression.Algorithm)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
  shutdown_timeout: 5s
logging:
  level: debug
  encoding: console
compression:
  algorithm: lz4
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
	assert.Equal(t, compression.LZ4, cfg.Compression.Algorithm)
	// Untouched fields keep their defaults.
	assert.Equal(t, int64(64<<20), cfg.Server.MaxBodyBytes)
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("STRATA_TEST_ADDR", ":7070")
	path := filepath.Join(t.TempDir(), "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: "${STRATA_TEST_ADDR}"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
compression:
  algorithm: zstd
`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Address = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.MaxBodyBytes = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Encoding = "xml"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Compression.Algorithm = "brotli"
	require.Error(t, cfg.Validate())
}
