package registry

import (
	"fmt"
	"path"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
)

// RegisterGenerator registers g under name. An existing registration with the
// same name is replaced.
func (r *Registry) RegisterGenerator(name string, format asset.Format, g plugin.Generator) {
	r.mu.Lock()
	_, replaced := r.generators.Set(name, GeneratorEntry{Name: name, Format: format, Generator: g})
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("Generator already registered, replacing it.", "name", name, "format", format)
		return
	}
	r.logger.Debug("Registering generator.", "name", name, "format", format)
}

// RegisterLoader registers l under name. An existing registration with the
// same name is replaced.
func (r *Registry) RegisterLoader(name string, format asset.Format, l plugin.Loader) {
	r.mu.Lock()
	_, replaced := r.loaders.Set(name, LoaderEntry{Name: name, Format: format, Loader: l})
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("Loader already registered, replacing it.", "name", name, "format", format)
		return
	}
	r.logger.Debug("Registering loader.", "name", name, "format", format)
}

// BindAssetExtension makes loader and generator the defaults for asset names
// ending in ext. The extension is matched case-insensitively, with or without
// its leading dot.
func (r *Registry) BindAssetExtension(ext, loader, generator string) {
	ext = normalizeExtension(ext)
	r.mu.Lock()
	_, replaced := r.bindings.Set(ext, Binding{Extension: ext, Loader: loader, Generator: generator})
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("Extension already bound, replacing binding.", "extension", ext, "loader", loader, "generator", generator)
	}
}

// Generator looks up a generator by exact name.
func (r *Registry) Generator(name string) (GeneratorEntry, error) {
	r.ensurePlugins()
	r.mu.RLock()
	entry, ok := r.generators.Get(name)
	r.mu.RUnlock()
	if !ok {
		return GeneratorEntry{}, fmt.Errorf("%w: %q", asset.ErrGeneratorNotFound, name)
	}
	return entry, nil
}

// Loader looks up a loader by exact name.
func (r *Registry) Loader(name string) (LoaderEntry, error) {
	r.ensurePlugins()
	r.mu.RLock()
	entry, ok := r.loaders.Get(name)
	r.mu.RUnlock()
	if !ok {
		return LoaderEntry{}, fmt.Errorf("%w: %q", asset.ErrLoaderNotFound, name)
	}
	return entry, nil
}

// Binding returns the extension binding that applies to assetName.
func (r *Registry) Binding(assetName string) (Binding, error) {
	ext := normalizeExtension(path.Ext(assetName))
	if ext == "" {
		return Binding{}, fmt.Errorf("%w: %q has no extension", asset.ErrUnknownAssetExtension, assetName)
	}
	r.ensurePlugins()
	r.mu.RLock()
	b, ok := r.bindings.Get(ext)
	r.mu.RUnlock()
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", asset.ErrUnknownAssetExtension, ext)
	}
	return b, nil
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
