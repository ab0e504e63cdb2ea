package cache

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/binio"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/manifest"
)

// Magic identifies a cache entry file.
const Magic = "EAB1"

// Extension is appended to the asset name to form the entry file name.
const Extension = ".eab"

// Path returns the cache entry location for assetName in manifestDir.
func Path(manifestDir, assetName string) string {
	return filepath.Join(manifestDir, manifest.CacheDirName, filepath.FromSlash(asset.Clean(assetName))+Extension)
}

// Clean removes every cache entry under manifestDir.
func Clean(manifestDir string) error {
	return os.RemoveAll(filepath.Join(manifestDir, manifest.CacheDirName))
}

// entry is the decoded form of a cache file.
type entry struct {
	hash        uint64
	generatedAt time.Time
	generated   *asset.Generated
}

// TryRead returns the cached result for an asset if the entry at path is
// still valid for the expected format and fragment hash. Dependencies listed
// in the entry are resolved against dir.
func TryRead(ctx context.Context, dir string, expected asset.Format, hash uint64, path string) (*asset.Generated, bool) {
	logger := ctxlog.FromContext(ctx).With("cache_path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("Cache entry unreadable.", "error", err)
		}
		return nil, false
	}

	e, err := decode(data)
	if err != nil {
		logger.Debug("Cache entry ignored.", "error", fmt.Errorf("%w: %w", asset.ErrCacheCorrupt, err))
		return nil, false
	}
	if e.hash != manifest.WildcardHash && e.hash != hash {
		logger.Debug("Cache entry stale: manifest fragment changed.", "stored_hash", e.hash, "hash", hash)
		return nil, false
	}
	if e.generated.Format != expected {
		logger.Debug("Cache entry stale: format changed.", "stored_format", e.generated.Format, "format", expected)
		return nil, false
	}
	for _, dep := range e.generated.FileDependencies {
		abs := filepath.Join(dir, filepath.FromSlash(dep))
		info, err := os.Stat(abs)
		if err != nil {
			logger.Debug("Cache entry stale: dependency unavailable.", "dependency", dep, "error", err)
			return nil, false
		}
		if info.ModTime().After(e.generatedAt) {
			logger.Debug("Cache entry stale: dependency modified.", "dependency", dep)
			return nil, false
		}
	}
	return e.generated, true
}

// Save writes g to path under hash, stamped with now. The file is replaced
// atomically so a concurrent reader never observes a partial entry.
func Save(ctx context.Context, g *asset.Generated, hash uint64, path string, now time.Time) error {
	var buf bytes.Buffer
	if err := encode(&buf, g, hash, now); err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".eab-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("installing cache entry: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Cache entry saved.", "cache_path", path, "bytes", buf.Len())
	return nil
}

func encode(buf *bytes.Buffer, g *asset.Generated, hash uint64, now time.Time) error {
	w := binio.NewWriter(buf)
	w.Raw([]byte(Magic))
	w.U64(hash)
	w.U32(g.Format.NameHash)
	w.U32(g.Format.Version)
	w.U32(uint32(g.Flags))
	w.I64(now.UnixNano())
	w.StringList(g.FileDependencies)
	w.StringList(g.LoadDependencies)
	w.Bytes(g.Data)
	w.U32(uint32(len(g.SideStreams)))
	for _, s := range g.SideStreams {
		w.String(s.Name)
		w.Bytes(s.Data)
	}
	return w.Err()
}

func decode(data []byte) (*entry, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, errors.New("bad magic")
	}
	src := bytes.NewReader(data[len(Magic):])
	r := binio.NewReader(src)
	// Nothing in an entry can be longer than the entry itself.
	r.SetLimit(uint64(len(data)))

	e := &entry{generated: &asset.Generated{}}
	g := e.generated
	e.hash = r.U64()
	g.Format.NameHash = r.U32()
	g.Format.Version = r.U32()
	g.Flags = asset.Flags(r.U32())
	e.generatedAt = time.Unix(0, r.I64())
	g.FileDependencies = r.StringList()
	g.LoadDependencies = r.StringList()
	g.Data = r.Bytes()
	sideCount := r.U32()
	if r.Err() == nil && uint64(sideCount) > uint64(len(data)) {
		return nil, fmt.Errorf("%d side streams: %w", sideCount, binio.ErrTooLarge)
	}
	for i := uint32(0); i < sideCount && r.Err() == nil; i++ {
		name := r.String()
		g.SideStreams = append(g.SideStreams, asset.SideStream{Name: name, Data: r.Bytes()})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if src.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", src.Len())
	}
	return e, nil
}
