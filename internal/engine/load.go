package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/dag"
	"github.com/specialistvlad/assetpipe/internal/manifest"
	"github.com/specialistvlad/assetpipe/internal/pack"
	"github.com/specialistvlad/assetpipe/internal/plugin"
)

// LoadResult reports one load pass.
type LoadResult struct {
	// Order holds the loaded tasks in the order they loaded, which is the
	// order a package must be written in.
	Order []*dag.Task
	// States holds every task's final state, indexed like Build.Tasks.
	States []dag.State
	Ok     bool
}

// Load invokes loaders for every task of b in dependency order and mounts the
// instances under mount.
func (e *Engine) Load(ctx context.Context, b *Build, mount string) LoadResult {
	logger := ctxlog.FromContext(ctx)

	res := dag.NewResolver(b.Tasks).Resolve(ctx, func(ctx context.Context, t *dag.Task) error {
		return e.loadTask(ctx, t, mount)
	})

	logger.Info("Assets loaded.", "mount", mount, "loaded", len(res.Order), "total", len(b.Tasks))
	return LoadResult{Order: res.Loaded(b.Tasks), States: res.States, Ok: res.Ok}
}

func (e *Engine) loadTask(ctx context.Context, t *dag.Task, mount string) error {
	entry, err := e.reg.Loader(t.Loader)
	if err != nil {
		return err
	}
	if entry.Format != t.Generated.Format {
		return fmt.Errorf("loader %s reads %s but asset was generated as %s", t.Loader, entry.Format, t.Generated.Format)
	}

	in := plugin.Input{Name: t.Name, Data: t.Generated.Data}
	if len(t.Generated.SideStreams) > 0 {
		in.SideStreams = make(map[string][]byte, len(t.Generated.SideStreams))
		for _, s := range t.Generated.SideStreams {
			in.SideStreams[s.Name] = s.Data
		}
	}
	instance, err := entry.Loader.Load(ctx, in)
	if err != nil {
		return err
	}
	e.insert(mount, t.Name, t.Loader, instance)
	return nil
}

// BuildAndLoad builds the manifest at path and loads the result under mount.
func (e *Engine) BuildAndLoad(ctx context.Context, path, mount string) (*Build, LoadResult, error) {
	b, err := e.Build(ctx, path)
	if err != nil {
		return nil, LoadResult{}, err
	}
	res := e.Load(ctx, b, mount)
	res.Ok = res.Ok && len(b.Failed) == 0
	return b, res, nil
}

// LoadAssets loads the assets at path under mount. path may be a manifest
// file, a directory holding one, or a package file. When a directory has no
// manifest, the package "<path>.eap" next to it is loaded instead.
func (e *Engine) LoadAssets(ctx context.Context, path, mount string) bool {
	logger := ctxlog.FromContext(ctx)

	src, err := ResolveSource(ctx, path)
	if err != nil {
		logger.Error("Nothing to load.", "path", path, "error", err)
		return false
	}

	if src.Package != "" {
		f, err := os.Open(src.Package)
		if err != nil {
			logger.Error("Failed to open package.", "path", src.Package, "error", err)
			return false
		}
		defer f.Close()
		ok, err := e.LoadPackage(ctx, f, mount)
		if err != nil {
			logger.Error("Package load aborted.", "path", src.Package, "error", err)
			return false
		}
		return ok
	}

	_, res, err := e.BuildAndLoad(ctx, src.Manifest, mount)
	if err != nil {
		logger.Error("Manifest build failed.", "path", src.Manifest, "error", err)
		return false
	}
	return res.Ok
}

// Source is what a load path resolved to. Exactly one field is set.
type Source struct {
	Manifest string
	Package  string
}

// ResolveSource decides what path refers to: a manifest file, a package file,
// a directory with a manifest, or a directory whose sibling "<dir>.eap" is a
// package.
func ResolveSource(ctx context.Context, path string) (Source, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving load path.", "path", path)

	path = filepath.Clean(path)
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		if strings.EqualFold(filepath.Ext(path), pack.Extension) {
			return Source{Package: path}, nil
		}
		return Source{Manifest: path}, nil
	case err == nil:
		found, err := manifest.Find(path)
		if err == nil {
			return Source{Manifest: found}, nil
		}
		if !errors.Is(err, manifest.ErrNoManifest) {
			return Source{}, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return Source{}, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	pkg := path + pack.Extension
	if _, err := os.Stat(pkg); err != nil {
		return Source{}, fmt.Errorf("no manifest at %s and no package %s: %w", path, pkg, manifest.ErrNoManifest)
	}
	logger.Debug("No manifest found, falling back to package.", "package", pkg)
	return Source{Package: pkg}, nil
}
