// Package params stores manifest attributes themselves as an asset, encoded
// as deterministic CBOR, so tunables can ship inside a package.
package params

import (
	"context"
	"fmt"
	"math/big"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/specialistvlad/assetpipe/internal/asset"
	"github.com/specialistvlad/assetpipe/internal/plugin"
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/raw"
	"github.com/zclconf/go-cty/cty"
)

const Name = "Params"

var Format = asset.NewFormat(Name, 1)

// Extensions bound to this module. The file itself is not read; the
// extension only selects the generator for a name-only entry.
var Extensions = []string{"params"}

// Reserved attributes describe the entry rather than its parameters.
var Reserved = []string{"name", "regex", "loader", "generator", "depends_on", "compress", "never_cache", "never_package"}

// Values is a loaded parameter set.
type Values map[string]any

// Module implements the registry.Module interface for this package.
type Module struct{}

// encMode produces Core Deterministic Encoding (RFC 8949 §4.2): the same
// fragment always encodes to the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("params: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("params: CBOR decoder initialization failed: " + err.Error())
	}
}

// Generate encodes every non-reserved attribute of the entry.
func Generate(c *plugin.Context) error {
	v, err := toGo(c.Fragment().Without(Reserved...).Value())
	if err != nil {
		return fmt.Errorf("failed to convert parameters of '%s': %w", c.AssetName(), err)
	}
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode parameters of '%s': %w", c.AssetName(), err)
	}
	c.Output().Write(data)
	raw.ApplyCommonAttributes(c)
	return nil
}

// Load decodes the payload into Values.
func Load(_ context.Context, in plugin.Input) (plugin.Instance, error) {
	values := Values{}
	if err := decMode.Unmarshal(in.Data, (*map[string]any)(&values)); err != nil {
		return nil, fmt.Errorf("failed to decode parameters of '%s': %w", in.Name, err)
	}
	return values, nil
}

// Register registers the generator, the loader and the extension binding.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator(Name, Format, plugin.GeneratorFunc(Generate))
	r.RegisterLoader(Name, Format, plugin.LoaderFunc(Load))
	for _, ext := range Extensions {
		r.BindAssetExtension(ext, Name, Name)
	}
}

// toGo converts a cty value into plain Go values CBOR can encode: strings,
// bools, int64 or float64 numbers, []any and map[string]any.
func toGo(v cty.Value) (any, error) {
	if v == cty.NilVal || v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			converted, err := toGo(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = converted
		}
		return out, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			converted, err := toGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
