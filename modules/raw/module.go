// Package raw ships source files into the pipeline byte for byte.
package raw

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
)

// Name is the generator and loader name this module registers.
const Name = "Raw"

// Format is the schema of raw assets: the file bytes, nothing else.
var Format = asset.NewFormat(Name, 1)

// Extensions are bound to the raw generator and loader.
var Extensions = []string{"bin", "dat", "png", "jpg", "jpeg", "wav", "ogg"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Blob is a loaded raw asset.
type Blob struct {
	Data        []byte
	SideStreams map[string][]byte
}

// Generate copies the asset's source file. It reads these attributes:
//
//	source         file to read instead of the asset name
//	depends_on     assets that must load first
//	compress       false stores the payload uncompressed in packages
//	never_cache    keep the result out of the content cache
//	never_package  keep the result out of packages
func Generate(c *plugin.Context) error {
	src := c.SourceFile()
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read source file '%s': %w", src, err)
	}
	c.Output().Write(data)
	ApplyCommonAttributes(c)
	c.Logger().Debug("Raw asset generated.", "source", src, "size", len(data))
	return nil
}

// ApplyCommonAttributes honors the attributes shared by every built-in
// generator: depends_on, compress, never_cache and never_package.
func ApplyCommonAttributes(c *plugin.Context) {
	f := c.Fragment()
	for _, dep := range f.Strings("depends_on") {
		c.AddLoadDependency(dep)
	}
	if compress, ok := f.Bool("compress"); ok && !compress {
		c.SetFlags(asset.DisableCompression)
	}
	if v, _ := f.Bool("never_cache"); v {
		c.SetFlags(asset.NeverCache)
	}
	if v, _ := f.Bool("never_package"); v {
		c.SetFlags(asset.NeverPackage)
	}
}

// Load wraps the payload in a Blob.
func Load(_ context.Context, in plugin.Input) (plugin.Instance, error) {
	return &Blob{Data: in.Data, SideStreams: in.SideStreams}, nil
}

// Register registers the generator, the loader and the extension bindings.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator(Name, Format, plugin.GeneratorFunc(Generate))
	r.RegisterLoader(Name, Format, plugin.LoaderFunc(Load))
	for _, ext := range Extensions {
		r.BindAssetExtension(ext, Name, Name)
	}
}
