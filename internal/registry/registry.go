package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tidwall/btree"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/plugin"
)

// Module is the interface that every built-in or external module implements
// to contribute generators, loaders, and extension bindings.
type Module interface {
	Register(r *Registry)
}

// GeneratorEntry is a registered generator together with the format it emits.
type GeneratorEntry struct {
	Name      string
	Format    asset.Format
	Generator plugin.Generator
}

// LoaderEntry is a registered loader together with the format it consumes.
type LoaderEntry struct {
	Name   string
	Format asset.Format
	Loader plugin.Loader
}

// Binding is the default loader/generator pair for a file extension.
type Binding struct {
	Extension string
	Loader    string
	Generator string
}

// Registry holds every registered generator, loader and extension binding for
// a single application instance.
type Registry struct {
	logger *slog.Logger

	mu         sync.RWMutex
	generators *btree.Map[string, GeneratorEntry]
	loaders    *btree.Map[string, LoaderEntry]
	bindings   *btree.Map[string, Binding]

	plugin        Module
	pluginOnce    sync.Once
	pluginsLoaded atomic.Bool
}

// New creates an empty Registry. A nil logger discards registration messages.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Registry{
		logger:     logger,
		generators: btree.NewMap[string, GeneratorEntry](0),
		loaders:    btree.NewMap[string, LoaderEntry](0),
		bindings:   btree.NewMap[string, Binding](0),
	}
}

// Register calls Register on every module in order.
func (r *Registry) Register(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Logger is the logger modules should use while registering.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Generators lists registered generator names in sorted order.
func (r *Registry) Generators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generators.Keys()
}

// Loaders lists registered loader names in sorted order.
func (r *Registry) Loaders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaders.Keys()
}

// Bindings lists every extension binding sorted by extension.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bindings.Values()
}
