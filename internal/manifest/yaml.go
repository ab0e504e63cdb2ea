package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// yamlDecoder reads YAML manifests by re-encoding the document as JSON.
type yamlDecoder struct{}

func (yamlDecoder) Decode(src []byte, filename string) (cty.Value, error) {
	var doc any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return cty.NilVal, fmt.Errorf("parsing YAML: %w", err)
	}
	normalized, err := normalizeYAML(doc)
	if err != nil {
		return cty.NilVal, err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return cty.NilVal, fmt.Errorf("re-encoding YAML: %w", err)
	}
	return impliedValue(encoded)
}

// normalizeYAML rewrites map[any]any nodes, which YAML produces for
// non-string keys, into map[string]any.
func normalizeYAML(v any) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			node[k] = n
		}
		return node, nil
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, child := range node {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			node[i] = n
		}
		return node, nil
	}
	return v, nil
}
