package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/var/run/es-recorder.sock", cfg.SocketPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 8192, cfg.ProcessMapSize)
	assert.Equal(t, 10*time.Second, cfg.SigmaPollInterval)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
socket_path: /tmp/shim.sock
os_version: "14.4"
listen_addr: ":9090"
sigma_poll_interval: 30s
mute_paths:
  - /private/var/log
  - /System/Volumes/Data
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shim.sock", cfg.SocketPath)
	assert.Equal(t, "14.4", cfg.OSVersion)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.SigmaPollInterval)
	assert.Equal(t, []string{"/private/var/log", "/System/Volumes/Data"}, cfg.MutePaths)
	// Untouched keys keep their defaults
	assert.Equal(t, "rules", cfg.RulesDir)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- bad"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
