package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_AppliesUnlessFlagGiven(t *testing.T) {
	dir := t.TempDir()
	path := writeSettings(t, dir, `
log_level = "debug"
mount = "game"
plugin_dir = "plugins"
healthcheck_port = 8081

[cache]
threshold = "2ms"
disabled = true

[package]
disable_compression = true
upload_url = "https://bucket/game.eap"

[watch]
debounce = "1s"
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	cfg := Config{Command: CommandPack, LogLevel: "warn", Mount: "cli"}
	s.ApplyTo(&cfg, func(flag string) bool { return flag == "mount" })

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cli", cfg.Mount, "explicit flags win over the settings file")
	assert.Equal(t, filepath.Join(dir, "plugins"), cfg.PluginDir)
	assert.Equal(t, 2*time.Millisecond, cfg.CacheThreshold)
	assert.True(t, cfg.DisableCache)
	assert.True(t, cfg.DisableCompression)
	assert.Equal(t, "https://bucket/game.eap", cfg.UploadURL)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, 8081, cfg.HealthcheckPort)
}

func TestLoadSettings_UploadOnlyForPack(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, t.TempDir(), "[package]\nupload_url = \"https://x\"\n"))
	require.NoError(t, err)

	cfg := Config{Command: CommandBuild}
	s.ApplyTo(&cfg, func(string) bool { return false })
	assert.Empty(t, cfg.UploadURL)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(writeSettings(t, t.TempDir(), "mont = \"typo\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")

	_, err = LoadSettings(writeSettings(t, t.TempDir(), "[cache]\nthreshold = \"soon\"\n"))
	require.Error(t, err)
}

func TestFindSettings(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "assets.hcl")
	require.NoError(t, os.WriteFile(manifest, nil, 0o644))
	assert.Empty(t, FindSettings(dir))

	path := writeSettings(t, dir, "")
	assert.Equal(t, path, FindSettings(dir))
	assert.Equal(t, path, FindSettings(manifest))
}
