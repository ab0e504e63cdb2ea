package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// hclDecoder reads native-syntax HCL manifests. Every `asset` block becomes
// one entry; an optional single block label is shorthand for `name`. Other
// top-level attributes and blocks are kept in the root document.
type hclDecoder struct{}

func (hclDecoder) Decode(src []byte, filename string) (cty.Value, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return cty.NilVal, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}

	var assetBlocks, otherBlocks hclsyntax.Blocks
	for _, block := range body.Blocks {
		if block.Type == "asset" {
			assetBlocks = append(assetBlocks, block)
		} else {
			otherBlocks = append(otherBlocks, block)
		}
	}

	attrs, diags := bodyAttributes(body.Attributes, otherBlocks)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if _, clash := attrs[KeyAssets]; clash {
		return cty.NilVal, fmt.Errorf("top-level %q attribute conflicts with asset blocks", KeyAssets)
	}

	entries := make([]cty.Value, 0, len(assetBlocks))
	for _, block := range assetBlocks {
		entry, blockDiags := assetValue(block)
		diags = append(diags, blockDiags...)
		if blockDiags.HasErrors() {
			continue
		}
		entries = append(entries, entry)
	}
	if diags.HasErrors() {
		return cty.NilVal, diags
	}

	attrs[KeyAssets] = cty.TupleVal(entries)
	return cty.ObjectVal(attrs), nil
}

func assetValue(block *hclsyntax.Block) (cty.Value, hcl.Diagnostics) {
	if len(block.Labels) > 1 {
		return cty.NilVal, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Too many labels on asset block",
			Detail:   "An asset block takes at most one label, the asset name.",
			Subject:  block.DefRange().Ptr(),
		}}
	}
	attrs, diags := bodyAttributes(block.Body.Attributes, block.Body.Blocks)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if len(block.Labels) == 1 {
		if _, dup := attrs[KeyName]; dup {
			return cty.NilVal, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Duplicate asset name",
				Detail:   "The asset name is given both as a block label and as the \"name\" attribute.",
				Subject:  block.DefRange().Ptr(),
			}}
		}
		attrs[KeyName] = cty.StringVal(block.Labels[0])
	}
	return cty.ObjectVal(attrs), diags
}

// bodyAttributes evaluates attributes and folds nested blocks into values:
// a labeled block becomes an object keyed by label, a single unlabeled block
// an object, and repeated unlabeled blocks a tuple.
func bodyAttributes(attributes hclsyntax.Attributes, blocks hclsyntax.Blocks) (map[string]cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out := make(map[string]cty.Value, len(attributes)+len(blocks))

	for name, attr := range attributes {
		value, valueDiags := attr.Expr.Value(nil)
		diags = append(diags, valueDiags...)
		if valueDiags.HasErrors() {
			continue
		}
		out[name] = value
	}

	unlabeled := make(map[string][]cty.Value)
	labeled := make(map[string]map[string]cty.Value)
	var order []string
	for _, block := range blocks {
		nested, nestedDiags := bodyAttributes(block.Body.Attributes, block.Body.Blocks)
		diags = append(diags, nestedDiags...)
		if nestedDiags.HasErrors() {
			continue
		}
		if _, clash := out[block.Type]; clash {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Block conflicts with attribute",
				Detail:   fmt.Sprintf("%q is defined both as an attribute and as a block.", block.Type),
				Subject:  block.DefRange().Ptr(),
			})
			continue
		}
		if _, seen := unlabeled[block.Type]; !seen {
			if _, seen := labeled[block.Type]; !seen {
				order = append(order, block.Type)
			}
		}
		if len(block.Labels) == 0 {
			unlabeled[block.Type] = append(unlabeled[block.Type], cty.ObjectVal(nested))
			continue
		}
		if labeled[block.Type] == nil {
			labeled[block.Type] = make(map[string]cty.Value)
		}
		labeled[block.Type][block.Labels[0]] = cty.ObjectVal(nested)
	}

	for _, name := range order {
		switch list := unlabeled[name]; {
		case labeled[name] != nil:
			out[name] = cty.ObjectVal(labeled[name])
		case len(list) == 1:
			out[name] = list[0]
		default:
			out[name] = cty.TupleVal(list)
		}
	}
	return out, diags
}
