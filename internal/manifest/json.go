package manifest

import (
	"fmt"

	"github.com/tidwall/jsonc"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// jsonDecoder reads JSON manifests. Comments and trailing commas are
// accepted.
type jsonDecoder struct{}

func (jsonDecoder) Decode(src []byte, filename string) (cty.Value, error) {
	return impliedValue(jsonc.ToJSON(src))
}

func impliedValue(src []byte) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(src)
	if err != nil {
		return cty.NilVal, fmt.Errorf("parsing JSON: %w", err)
	}
	value, err := ctyjson.Unmarshal(src, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("parsing JSON: %w", err)
	}
	return value, nil
}
