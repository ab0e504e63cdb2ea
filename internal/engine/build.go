package engine

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assetpipe/internal/cache"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/dag"
	"github.com/specialistvlad/assetpipe/internal/manifest"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// Build is the outcome of generating every asset of one manifest.
type Build struct {
	Manifest *manifest.Manifest
	// Tasks holds one task per discovered asset, in discovery order. Tasks
	// whose generation failed have no Generated data.
	Tasks []*dag.Task
	// Failed maps asset names to the reason they could not be generated.
	Failed map[string]error

	Generated int
	CacheHits int
}

// Build loads the manifest at path and produces a task for every asset it
// declares, from the cache where possible. Only manifest-level problems are
// returned as errors; asset failures are recorded in the result.
func (e *Engine) Build(ctx context.Context, path string) (*Build, error) {
	m, err := manifest.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.BuildManifest(ctx, m)
}

// BuildManifest is Build for an already parsed manifest.
func (e *Engine) BuildManifest(ctx context.Context, m *manifest.Manifest) (*Build, error) {
	logger := ctxlog.FromContext(ctx)

	items, err := m.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering assets: %w", err)
	}
	logger.Info("Building assets.", "manifest", m.Path, "assets", len(items))

	b := &Build{Manifest: m, Failed: make(map[string]error)}
	for _, item := range items {
		t, err := e.buildTask(ctx, m, item, b)
		if err != nil {
			logger.Error("Asset generation failed.", "asset", item.Name, "error", err)
			b.Failed[item.Name] = err
		}
		b.Tasks = append(b.Tasks, t)
	}

	logger.Info("Build finished.", "assets", len(b.Tasks), "generated", b.Generated, "cache_hits", b.CacheHits, "failed", len(b.Failed))
	return b, nil
}

func (e *Engine) buildTask(ctx context.Context, m *manifest.Manifest, item manifest.Item, b *Build) (*dag.Task, error) {
	t := &dag.Task{Name: item.Name, Hash: manifest.Hash(item.Entry.Fragment)}

	loader, generator, err := e.bindings(item)
	if err != nil {
		return t, err
	}
	t.Loader, t.Generator = loader, generator

	entry, err := e.reg.Generator(generator)
	if err != nil {
		return t, err
	}

	cachePath := cache.Path(m.Dir, item.Name)
	policy := e.opts.CachePolicy
	if !policy.Disabled {
		if g, ok := cache.TryRead(ctx, m.Dir, entry.Format, t.Hash, cachePath); ok {
			ctxlog.FromContext(ctx).Debug("Cache hit.", "asset", item.Name)
			t.Generated = g
			b.CacheHits++
			return t, nil
		}
	}

	start := e.opts.Clock.Now()
	res, err := e.reg.Generate(ctx, registry.Request{
		Dir:       m.Dir,
		Generator: generator,
		Asset:     item.Name,
		Fragment:  item.Entry.Fragment,
		Root:      m.Root,
	})
	if err != nil {
		return t, err
	}
	elapsed := e.opts.Clock.Since(start)
	t.Generated = res.Generated
	b.Generated++

	if policy.ShouldSave(elapsed, res.Generated.Flags) {
		hash := t.Hash
		if res.WildcardHash {
			hash = manifest.WildcardHash
		}
		if err := cache.Save(ctx, res.Generated, hash, cachePath, e.opts.Clock.Now()); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to save cache entry.", "asset", item.Name, "error", err)
		}
	}
	return t, nil
}

// bindings picks the loader and generator for an item. Names given in the
// manifest win; whatever is missing comes from the extension binding, and
// failing that from the other name.
func (e *Engine) bindings(item manifest.Item) (loader, generator string, err error) {
	loader, generator = item.Entry.Loader, item.Entry.Generator
	if loader != "" && generator != "" {
		return loader, generator, nil
	}
	b, err := e.reg.Binding(item.Name)
	if err != nil {
		if loader == "" && generator == "" {
			return "", "", err
		}
		if loader == "" {
			loader = generator
		} else {
			generator = loader
		}
		return loader, generator, nil
	}
	if loader == "" {
		loader = b.Loader
	}
	if generator == "" {
		generator = b.Generator
	}
	return loader, generator, nil
}
