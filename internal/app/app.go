package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/assetpipe/internal/cache"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/engine"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/wasmgen"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	engine   *engine.Engine
	plugins  *wasmgen.Module

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// engine. Without modules, the built-in ones are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(logger)
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Register(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if problems := reg.Validate(ctx); len(problems) == 0 {
		logger.Debug("Registry validation passed.")
	}

	var plugins *wasmgen.Module
	if cfg.PluginDir != "" {
		plugins = &wasmgen.Module{Dir: cfg.PluginDir}
		reg.SetPluginModule(plugins)
		logger.Debug("Plugin directory configured.", "plugin_dir", cfg.PluginDir)
	}

	policy := cache.DefaultPolicy()
	if cfg.CacheThreshold > 0 {
		policy.Threshold = cfg.CacheThreshold
	}
	policy.Disabled = cfg.DisableCache

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		plugins:  plugins,
		engine: engine.New(reg, engine.Options{
			CachePolicy:        policy,
			DisableCompression: cfg.DisableCompression,
		}),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine { return a.engine }

// Close unloads every asset and releases plugin runtimes.
func (a *App) Close(ctx context.Context) error {
	a.engine.Unload()
	if a.plugins != nil {
		return a.plugins.Close(ctx)
	}
	return nil
}
