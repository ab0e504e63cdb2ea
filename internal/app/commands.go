package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/assetpipe/internal/cache"
	"github.com/specialistvlad/assetpipe/internal/dag"
	"github.com/specialistvlad/assetpipe/internal/engine"
	"github.com/specialistvlad/assetpipe/internal/pack"
	"github.com/specialistvlad/assetpipe/internal/publish"
)

// ErrNeedsManifest is returned by commands that cannot work from a package.
var ErrNeedsManifest = errors.New("command needs a manifest, not a package")

// build builds and loads the manifest, or loads the package, at the
// configured path and prints a summary.
func (a *App) build(ctx context.Context) error {
	src, err := engine.ResolveSource(ctx, a.config.Path)
	if err != nil {
		return err
	}

	if src.Package != "" {
		f, err := os.Open(src.Package)
		if err != nil {
			return fmt.Errorf("failed to open package: %w", err)
		}
		defer f.Close()
		ok, err := a.engine.LoadPackage(ctx, f, a.config.Mount)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "Loaded %d assets from %s into /%s\n", a.engine.Len(), src.Package, a.config.Mount)
		if !ok {
			return ErrBuildFailed
		}
		return nil
	}

	b, res, err := a.engine.BuildAndLoad(ctx, src.Manifest, a.config.Mount)
	if err != nil {
		return err
	}
	a.printSummary(b, res)
	if !res.Ok {
		return ErrBuildFailed
	}
	return nil
}

func (a *App) printSummary(b *engine.Build, res engine.LoadResult) {
	fmt.Fprintf(a.outW, "Loaded %d of %d assets into /%s (%d generated, %d from cache, %d failed to generate)\n",
		len(res.Order), len(b.Tasks), a.config.Mount, b.Generated, b.CacheHits, len(b.Failed))
}

// pack builds the manifest and writes every loaded asset into a package.
// Nothing is written unless every asset loaded.
func (a *App) pack(ctx context.Context) error {
	src, err := engine.ResolveSource(ctx, a.config.Path)
	if err != nil {
		return err
	}
	if src.Package != "" {
		return fmt.Errorf("%w: %s", ErrNeedsManifest, src.Package)
	}

	b, res, err := a.engine.BuildAndLoad(ctx, src.Manifest, a.config.Mount)
	if err != nil {
		return err
	}
	a.printSummary(b, res)
	if !res.Ok {
		return ErrBuildFailed
	}

	out := a.config.Out
	if out == "" {
		out = filepath.Clean(b.Manifest.Dir) + pack.Extension
	}
	if err := a.writePackageFile(ctx, out, res.Order); err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "Wrote %s\n", out)

	if a.config.UploadURL != "" {
		result, err := publish.New(nil).Upload(ctx, out, a.config.UploadURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "Uploaded %d bytes (%s)\n", result.Size, result.Status)
	}
	return nil
}

// writePackageFile writes the package next to its destination and renames
// it into place.
func (a *App) writePackageFile(ctx context.Context, out string, order []*dag.Task) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), ".pack-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := a.engine.WritePackage(ctx, tmp, order); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), out)
}

// inspect lists the entries of a package, or the tasks and load edges of a
// manifest, without loading anything.
func (a *App) inspect(ctx context.Context) error {
	src, err := engine.ResolveSource(ctx, a.config.Path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if src.Package != "" {
		f, err := os.Open(src.Package)
		if err != nil {
			return fmt.Errorf("failed to open package: %w", err)
		}
		defer f.Close()
		entries, loaders, err := pack.Read(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "NAME\tLOADER\tFORMAT\tSIZE\tSTORED\n")
		for _, e := range entries {
			stored := "raw"
			if e.Compress {
				stored = fmt.Sprintf("%d", e.CompressedSize)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Name, e.Loader, e.Format, len(e.Data), stored)
		}
		fmt.Fprintf(tw, "\n%d entries, loaders: %s\n", len(entries), strings.Join(loaders, ", "))
		return nil
	}

	b, err := a.engine.Build(ctx, src.Manifest)
	if err != nil {
		return err
	}
	graph := dag.FromTasks(b.Tasks)
	fmt.Fprintf(tw, "NAME\tGENERATOR\tLOADER\tSIZE\tFLAGS\tAFTER\n")
	for _, t := range b.Tasks {
		if t.Generated == nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\tfailed\t-\n", t.Name, t.Generator, t.Loader)
			continue
		}
		deps, _ := graph.Dependencies(t.Name)
		after := "-"
		if len(deps) > 0 {
			after = strings.Join(deps, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", t.Name, t.Generator, t.Loader, len(t.Generated.Data), t.Generated.Flags, after)
	}
	if err := graph.DetectCycles(); err != nil {
		fmt.Fprintf(tw, "\n%v\n", err)
	}
	if len(b.Failed) > 0 {
		return ErrBuildFailed
	}
	return nil
}

// clean removes the content cache of the manifest at the configured path.
func (a *App) clean(ctx context.Context) error {
	src, err := engine.ResolveSource(ctx, a.config.Path)
	if err != nil {
		return err
	}
	if src.Package != "" {
		return fmt.Errorf("%w: %s", ErrNeedsManifest, src.Package)
	}
	dir := filepath.Dir(src.Manifest)
	if err := cache.Clean(dir); err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	a.logger.Info("Cache removed.", "dir", dir)
	fmt.Fprintf(a.outW, "Cleaned cache in %s\n", dir)
	return nil
}
