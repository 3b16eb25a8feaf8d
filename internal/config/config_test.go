package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "mascara", cfg.Scheme)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MaxConnections)
	assert.False(t, cfg.Strict)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mascara.yaml")
	doc := "scheme: custom\nstrict: true\nmaxConnections: 4\nidleTimeout: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Scheme)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 4, cfg.MaxConnections)
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout)
	// LogLevel was never mentioned in the document, so Default()'s value
	// survives the partial override.
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
