package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/manifest"
	"github.com/specialistvlad/assetpipe/internal/plugin"
)

// Request describes one generator invocation.
type Request struct {
	// Dir is the manifest directory relative paths resolve against.
	Dir       string
	Generator string
	Asset     string
	Fragment  manifest.Fragment
	Root      manifest.Fragment
}

// Result is what a successful invocation produced.
type Result struct {
	Generated *asset.Generated
	// WildcardHash is set when the generator asked for its cache entry to
	// ignore the manifest fragment.
	WildcardHash bool
}

// Generate runs the named generator for one asset. A failure affects only
// that asset; the caller decides whether to continue with the rest.
func (r *Registry) Generate(ctx context.Context, req Request) (*Result, error) {
	entry, err := r.Generator(req.Generator)
	if err != nil {
		return nil, err
	}

	ctx, logger := ctxlog.With(ctx, "asset", req.Asset, "generator", req.Generator)
	logger.Debug("Invoking generator.")

	c := plugin.NewContext(ctx, req.Dir, req.Asset, req.Fragment, req.Root)
	if err := entry.Generator.Generate(c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", asset.ErrGenerateFailed, req.Asset, err)
	}
	return &Result{Generated: c.Result(entry.Format), WildcardHash: c.WildcardHash()}, nil
}
