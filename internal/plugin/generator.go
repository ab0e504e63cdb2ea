package plugin

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/ctxlog"
	"github.com/specialistvlad/assetpipe/internal/manifest"
)

// Generator produces the binary form of one asset.
type Generator interface {
	Generate(c *Context) error
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(c *Context) error

func (f GeneratorFunc) Generate(c *Context) error { return f(c) }

// Context is the single channel through which a generator reads its inputs
// and reports its outputs.
type Context struct {
	ctx       context.Context
	dir       string
	assetName string
	fragment  manifest.Fragment
	root      manifest.Fragment

	out      bytes.Buffer
	flags    asset.Flags
	wildcard bool
	fileDeps []string
	loadDeps []string
	side     []asset.SideStream
}

// NewContext prepares an invocation for the asset named assetName of the
// manifest located in dir.
func NewContext(ctx context.Context, dir, assetName string, fragment, root manifest.Fragment) *Context {
	return &Context{
		ctx:       ctx,
		dir:       dir,
		assetName: assetName,
		fragment:  fragment,
		root:      root,
	}
}

func (c *Context) Context() context.Context { return c.ctx }

// Logger returns the invocation's logger, tagged with the asset name.
func (c *Context) Logger() *slog.Logger { return ctxlog.FromContext(c.ctx) }

// Dir is the manifest directory.
func (c *Context) Dir() string { return c.dir }

// AssetName is the canonical name of the asset being generated.
func (c *Context) AssetName() string { return c.assetName }

// Fragment is the manifest entry that declared the asset.
func (c *Context) Fragment() manifest.Fragment { return c.fragment }

// Root is the whole manifest document.
func (c *Context) Root() manifest.Fragment { return c.root }

// ResolveRelPath turns a manifest-relative path into an absolute one.
func (c *Context) ResolveRelPath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.dir, filepath.FromSlash(p))
}

// FileDependency records that the generator reads p and returns its resolved
// path. A later change to the file invalidates the cached result.
func (c *Context) FileDependency(p string) string {
	resolved := c.ResolveRelPath(p)
	rel := p
	if r, err := filepath.Rel(c.dir, resolved); err == nil {
		rel = filepath.ToSlash(r)
	}
	rel = path.Clean(rel)
	for _, existing := range c.fileDeps {
		if existing == rel {
			return resolved
		}
	}
	c.fileDeps = append(c.fileDeps, rel)
	return resolved
}

// SourceFile records the asset's own source file as a dependency and returns
// its path. It is the common case for one-file-in, one-blob-out generators.
func (c *Context) SourceFile() string {
	if src, ok := c.fragment.String("source"); ok && src != "" {
		return c.FileDependency(src)
	}
	return c.FileDependency(c.assetName)
}

// AddLoadDependency requires the named asset to be loaded before this one.
// Names are relative to this asset's directory unless they start with "/".
func (c *Context) AddLoadDependency(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, existing := range c.loadDeps {
		if existing == name {
			return
		}
	}
	c.loadDeps = append(c.loadDeps, name)
}

// Write appends to the output blob.
func (c *Context) Write(p []byte) (int, error) { return c.out.Write(p) }

// Output is the sink that becomes the generated asset's data.
func (c *Context) Output() *bytes.Buffer { return &c.out }

// AddSideStream attaches a named auxiliary blob to the result.
func (c *Context) AddSideStream(name string, data []byte) {
	c.side = append(c.side, asset.SideStream{Name: name, Data: data})
}

// SetFlags adds flags to the result.
func (c *Context) SetFlags(flags asset.Flags) { c.flags |= flags }

func (c *Context) Flags() asset.Flags { return c.flags }

// UseWildcardHash asks the cache to store the result under the wildcard
// hash, so it stays valid whatever the manifest fragment says. File
// dependencies still invalidate it.
func (c *Context) UseWildcardHash() { c.wildcard = true }

// WildcardHash reports whether UseWildcardHash was called.
func (c *Context) WildcardHash() bool { return c.wildcard }

// Result packages everything the generator reported.
func (c *Context) Result(format asset.Format) *asset.Generated {
	return &asset.Generated{
		Data:             bytes.Clone(c.out.Bytes()),
		FileDependencies: c.fileDeps,
		LoadDependencies: c.loadDeps,
		SideStreams:      c.side,
		Flags:            c.flags,
		Format:           format,
	}
}
