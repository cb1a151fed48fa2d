package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "force", cfg.Layout.Algorithm)
	assert.Equal(t, 2000.0, cfg.Layout.Repulsion)
	assert.Equal(t, 120.0, cfg.Layout.SpringLength)
	assert.Equal(t, 0.005, cfg.Layout.SpringK)
	assert.Equal(t, 0.01, cfg.Layout.CenterGravity)
	assert.Equal(t, 0.85, cfg.Layout.Damping)
	assert.Equal(t, 100, cfg.Layout.Iterations)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topoviz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 5s
layout:
  iterations: 250
  spring_length: 80
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 250, cfg.Layout.Iterations)
	assert.Equal(t, 80.0, cfg.Layout.SpringLength)

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.85, cfg.Layout.Damping)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TOPOVIZ_SERVER_PORT", "7070")
	t.Setenv("TOPOVIZ_LAYOUT_SPRING_LENGTH", "150")
	t.Setenv("TOPOVIZ_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 150.0, cfg.Layout.SpringLength)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("TOPOVIZ_LOGGING_LEVEL", "loud")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsDampingOutOfRange(t *testing.T) {
	t.Setenv("TOPOVIZ_LAYOUT_DAMPING", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLayoutParams(t *testing.T) {
	cfg := Default()
	p := cfg.Layout.Params()
	assert.Equal(t, cfg.Layout.Repulsion, p.Repulsion)
	assert.Equal(t, cfg.Layout.Iterations, p.Iterations)
	assert.Equal(t, 22.0, p.Pad())
}

func TestNewAlgorithm(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "Force-Directed Layout", cfg.Layout.NewAlgorithm().Name())

	cfg.Layout.Algorithm = "jitter"
	assert.Equal(t, "Jittered Force-Directed Layout", cfg.Layout.NewAlgorithm().Name())
}

func TestServerAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "server.port", envTransform("TOPOVIZ_SERVER_PORT"))
	assert.Equal(t, "layout.spring_length", envTransform("TOPOVIZ_LAYOUT_SPRING_LENGTH"))
	assert.Equal(t, "logging.level", envTransform("TOPOVIZ_LOGGING_LEVEL"))
}
