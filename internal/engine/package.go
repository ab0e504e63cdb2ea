package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/dag"
	"github.com/specialistvlad/assetpipe/internal/pack"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// WritePackage writes the tasks, in the given load order, as a package.
// Tasks flagged NeverPackage are left out. Side streams precede the asset
// that owns them.
func (e *Engine) WritePackage(ctx context.Context, w io.Writer, order []*dag.Task) error {
	logger := ctxlog.FromContext(ctx)

	var entries []pack.Entry
	for _, t := range order {
		g := t.Generated
		if g == nil {
			continue
		}
		if g.Flags.Has(asset.NeverPackage) {
			logger.Debug("Asset excluded from package.", "asset", t.Name)
			continue
		}
		compress := !g.Flags.Has(asset.DisableCompression)
		for _, s := range g.SideStreams {
			entries = append(entries, pack.Entry{
				Name:     pack.SideEntryName(t.Name, s.Name),
				Loader:   pack.SideLoader,
				Compress: compress,
				Data:     s.Data,
			})
		}
		entries = append(entries, pack.Entry{
			Name:     t.Name,
			Loader:   t.Loader,
			Format:   g.Format,
			Compress: compress,
			Data:     g.Data,
		})
	}

	if err := pack.Write(w, entries, pack.WriteOptions{DisableCompression: e.opts.DisableCompression}); err != nil {
		return err
	}
	logger.Info("Package written.", "entries", len(entries), "compression", !e.opts.DisableCompression)
	return nil
}

// LoadAssetsFromPackageBytes loads a package held in memory under mount.
func (e *Engine) LoadAssetsFromPackageBytes(ctx context.Context, data []byte, mount string) bool {
	ok, err := e.LoadPackage(ctx, bytes.NewReader(data), mount)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Package load aborted.", "error", err)
		return false
	}
	return ok
}

// LoadPackage loads every entry of a package, in order, under mount. Problems
// that make the rest of the package untrustworthy (bad magic, an unknown
// loader, a format mismatch, corrupt data) stop the load and are returned.
// A loader failing on one entry only fails that entry and is reported through
// the bool.
func (e *Engine) LoadPackage(ctx context.Context, r io.Reader, mount string) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	pr, err := pack.NewReader(r)
	if err != nil {
		return false, err
	}

	loaders := make(map[string]registry.LoaderEntry, len(pr.Loaders()))
	for _, name := range pr.Loaders() {
		if name == pack.SideLoader {
			continue
		}
		entry, err := e.reg.Loader(name)
		if err != nil {
			return false, err
		}
		loaders[name] = entry
	}

	ok := true
	loaded := 0
	var pending []*pack.Entry
	for {
		entry, err := pr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, err
		}

		if entry.Loader == pack.SideLoader {
			pending = append(pending, entry)
			continue
		}
		streams := ownSideStreams(ctx, entry.Name, pending)
		pending = pending[:0]

		l := loaders[entry.Loader]
		if l.Format != entry.Format {
			return false, fmt.Errorf("%w: %s: loader %s reads %s, package has %s",
				asset.ErrPackageFormatMismatch, entry.Name, entry.Loader, l.Format, entry.Format)
		}

		instance, err := l.Loader.Load(ctx, plugin.Input{Name: entry.Name, Data: entry.Data, SideStreams: streams})
		if err != nil {
			logger.Error("Asset failed to load.", "asset", entry.Name, "loader", entry.Loader, "error", err)
			ok = false
			continue
		}
		e.insert(mount, entry.Name, entry.Loader, instance)
		loaded++
	}
	for _, orphan := range pending {
		logger.Warn("Side stream has no owning asset.", "entry", orphan.Name)
	}

	logger.Info("Package loaded.", "mount", mount, "loaded", loaded, "total", pr.Len())
	return ok, nil
}

// ownSideStreams collects the side entries that precede the asset named owner.
// Entries that do not belong to it are reported and dropped.
func ownSideStreams(ctx context.Context, owner string, pending []*pack.Entry) map[string][]byte {
	if len(pending) == 0 {
		return nil
	}
	streams := make(map[string][]byte, len(pending))
	for _, side := range pending {
		stream, ok := pack.SideStreamName(owner, side.Name)
		if !ok {
			ctxlog.FromContext(ctx).Warn("Side stream has no owning asset.", "entry", side.Name, "next_asset", owner)
			continue
		}
		streams[stream] = side.Data
	}
	return streams
}
