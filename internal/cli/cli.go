package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/specialistvlad/assetpipe/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode lets callers read the code without knowing the concrete type.
func (e *ExitError) ExitCode() int { return e.Code }

const usageHeader = `
assetpipe - builds, caches, packages and loads game assets.

Usage:
  assetpipe <command> [options] [PATH]

Commands:
  build     generate every asset and load it (PATH may also be a package)
  pack      build, then write every loaded asset into a .eap package
  inspect   list the assets of a manifest or the entries of a package
  watch     build, then rebuild and reload whenever files change
  clean     delete the manifest's asset cache

Arguments:
  PATH
    A manifest file, a directory holding assets.hcl/json/yaml, or a .eap
    package. Defaults to the current directory.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("assetpipe", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageHeader)
		flagSet.PrintDefaults()
	}

	cfg := app.Config{}
	configPath := flagSet.String("config", "", "Settings file. Defaults to "+app.SettingsFileName+" next to the manifest.")
	flagSet.StringVarP(&cfg.Mount, "mount", "m", "", "Namespace directory the assets are loaded under.")
	flagSet.StringVarP(&cfg.Out, "out", "o", "", "Package file written by pack. Defaults to <manifest dir>.eap.")
	flagSet.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.BoolVar(&cfg.DisableCache, "no-cache", false, "Neither read nor write the asset cache.")
	flagSet.BoolVar(&cfg.DisableCompression, "no-compress", false, "Store every package payload uncompressed.")
	flagSet.DurationVar(&cfg.CacheThreshold, "cache-threshold", 0, "Only cache assets that took at least this long to generate (default 500µs).")
	flagSet.StringVar(&cfg.PluginDir, "plugin-dir", "", "Directory of .wasm generator plugins.")
	flagSet.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flagSet.StringVar(&cfg.NotifyURL, "notify-url", "", "socket.io server told about every rebuild in watch mode.")
	flagSet.StringVar(&cfg.UploadURL, "upload", "", "Pre-signed URL the package is PUT to after pack.")
	flagSet.DurationVar(&cfg.Debounce, "debounce", 0, "Quiet period before watch mode rebuilds (default 200ms).")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	positional := flagSet.Args()
	if len(positional) == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	cfg.Command = strings.ToLower(positional[0])
	switch len(positional) {
	case 1:
		cfg.Path = "."
	case 2:
		cfg.Path = positional[1]
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(positional[2:], " "))}
	}
	slog.Debug("Command determined.", "command", cfg.Command, "path", cfg.Path)

	settingsPath := *configPath
	if settingsPath == "" {
		settingsPath = app.FindSettings(cfg.Path)
	}
	if settingsPath != "" {
		settings, err := app.LoadSettings(settingsPath)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		settings.ApplyTo(&cfg, func(name string) bool { return flagSet.Changed(name) })
		slog.Debug("Settings file applied.", "path", settingsPath)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
