// Package inline turns base64 data embedded in the manifest into assets.
package inline

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/compress"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/raw"
)

const Name = "Inline"

var Format = asset.NewFormat(Name, 1)

// ErrMissingData is returned when the manifest entry has no data attribute.
var ErrMissingData = errors.New("inline asset has no 'data' attribute")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Generate decodes the entry's base64 data attribute. The result depends on
// the manifest alone, so no file dependency is recorded.
func Generate(c *plugin.Context) error {
	encoded, ok := c.Fragment().String("data")
	if !ok {
		return ErrMissingData
	}
	data, err := compress.DecodeBase64(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode data of '%s': %w", c.AssetName(), err)
	}
	c.Output().Write(data)
	raw.ApplyCommonAttributes(c)
	return nil
}

// Load returns the decoded bytes as a raw.Blob.
func Load(ctx context.Context, in plugin.Input) (plugin.Instance, error) {
	return raw.Load(ctx, in)
}

// Register registers the generator and the loader. Inline assets have no
// file extension, so entries name the generator explicitly.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator(Name, Format, plugin.GeneratorFunc(Generate))
	r.RegisterLoader(Name, Format, plugin.LoaderFunc(Load))
}
