package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Commands understood by App.Run.
const (
	CommandBuild   = "build"
	CommandPack    = "pack"
	CommandInspect = "inspect"
	CommandWatch   = "watch"
	CommandClean   = "clean"
)

// Commands lists every command in help order.
var Commands = []string{CommandBuild, CommandPack, CommandInspect, CommandWatch, CommandClean}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	// Path is a manifest file, a directory holding one, or a package.
	Path string
	// Mount is where loaded assets are placed in the namespace.
	Mount string
	// Out is the package file written by pack. Empty means "<dir>.eap"
	// next to the manifest directory.
	Out string

	LogFormat string
	LogLevel  string

	CacheThreshold     time.Duration
	DisableCache       bool
	DisableCompression bool
	PluginDir          string

	HealthcheckPort int
	NotifyURL       string
	UploadURL       string
	Debounce        time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}
	if !validCommand(cfg.Command) {
		return nil, fmt.Errorf("unknown command '%s': must be one of %s", cfg.Command, strings.Join(Commands, ", "))
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if cfg.CacheThreshold < 0 {
		return nil, errors.New("cache-threshold cannot be negative")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	if cfg.UploadURL != "" && cfg.Command != CommandPack {
		return nil, errors.New("upload is only supported by the pack command")
	}
	cfg.Mount = strings.Trim(cfg.Mount, "/")
	return &cfg, nil
}

func validCommand(c string) bool {
	for _, known := range Commands {
		if c == known {
			return true
		}
	}
	return false
}
