package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_SettingsFileChoosesFormat(t *testing.T) {
	s, err := LoadSettings(writeSettings(t, t.TempDir(), "log_format = \"json\"\nlog_level = \"warn\"\n"))
	require.NoError(t, err)
	cfg := Config{Command: CommandPack, LogFormat: "text", LogLevel: "info"}
	s.ApplyTo(&cfg, func(string) bool { return false })

	var out bytes.Buffer
	logger := newLogger(&cfg, &out)
	logger.Info("dropped")
	logger.Warn("Package written.", "entries", 3)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "Package written.", record["msg"])
	assert.Equal(t, "pack", record["command"])
	assert.Equal(t, float64(3), record["entries"])
	assert.NotContains(t, record, "source")
}

func TestNewLogger_DebugNamesSourceFile(t *testing.T) {
	var out bytes.Buffer
	logger := newLogger(&Config{Command: CommandBuild, LogFormat: "text", LogLevel: "debug"}, &out)
	logger.Debug("Invoking generator.")

	line := out.String()
	assert.Contains(t, line, "command=build")
	assert.Contains(t, line, "source=logger_test.go:")
	assert.NotContains(t, line, "/")
}
