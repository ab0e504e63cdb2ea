package engine

import (
	"sync"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/cache"
	"github.com/specialistvlad/assetpipe/internal/clock"
	"github.com/specialistvlad/assetpipe/internal/namespace"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// Options configure an Engine.
type Options struct {
	CachePolicy cache.Policy
	// DisableCompression writes every package payload raw.
	DisableCompression bool
	// Clock stamps cache entries and times generations. Defaults to the
	// wall clock.
	Clock clock.Clock
}

// Engine owns the mount namespace and the registry used to fill it.
type Engine struct {
	reg  *registry.Registry
	opts Options

	// mu guards tree. Pipeline work runs on one goroutine; readers such as
	// the status server take the read lock.
	mu   sync.RWMutex
	tree *namespace.Tree
}

// New creates an engine with an empty namespace.
func New(reg *registry.Registry, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Engine{reg: reg, opts: opts, tree: namespace.New()}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Find looks up a loaded asset by its full path.
func (e *Engine) Find(path string) (namespace.Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Find(path)
}

// Get returns the instance loaded at path if it has type T.
func Get[T any](e *Engine, path string) (T, bool) {
	var zero T
	entry, ok := e.Find(path)
	if !ok {
		return zero, false
	}
	v, ok := entry.Instance.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Walk visits every loaded asset in pre-order. Returning false stops the
// walk.
func (e *Engine) Walk(fn func(namespace.Entry) bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	e.tree.Walk(e.tree.Root(), "", fn)
}

// Len reports the number of loaded assets.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Len()
}

// Unload destroys every loaded asset.
func (e *Engine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree.Unload()
}

// insert places an instance at mount/name, creating directories as needed.
func (e *Engine) insert(mount, name, loader string, instance any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	base, _ := e.tree.FindOrCreate(e.tree.Root(), mount, true)
	dir, _ := e.tree.FindOrCreate(base, asset.ParentPath(name), true)
	e.tree.Insert(dir, asset.BaseName(name), loader, instance)
}
