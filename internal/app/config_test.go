package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{Command: CommandBuild, Path: "assets", LogFormat: "text", LogLevel: "info"}
}

func TestNewConfig_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.Mount = "/game/"
	got, err := NewConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "game", got.Mount)
}

func TestNewConfig_Invalid(t *testing.T) {
	cases := map[string]func(c *Config){
		"missing path":       func(c *Config) { c.Path = "" },
		"unknown command":    func(c *Config) { c.Command = "deploy" },
		"bad log format":     func(c *Config) { c.LogFormat = "xml" },
		"bad log level":      func(c *Config) { c.LogLevel = "trace" },
		"negative threshold": func(c *Config) { c.CacheThreshold = -time.Millisecond },
		"bad port":           func(c *Config) { c.HealthcheckPort = 70000 },
		"upload on build":    func(c *Config) { c.UploadURL = "http://bucket/x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			_, err := NewConfig(cfg)
			assert.Error(t, err)
		})
	}
}
