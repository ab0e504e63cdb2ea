package manifest

import (
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Fragment is a read-only view over one manifest value, usually an asset
// entry. Getters convert between compatible primitive types, so a YAML `4`
// and an HCL `"4"` both read as the number 4.
type Fragment struct {
	v cty.Value
}

// NewFragment wraps v.
func NewFragment(v cty.Value) Fragment { return Fragment{v: v} }

// Value returns the underlying cty value (cty.NilVal for the zero Fragment).
func (f Fragment) Value() cty.Value { return f.v }

// IsEmpty reports whether the fragment is undefined, null, or has no entries.
func (f Fragment) IsEmpty() bool {
	if f.v == cty.NilVal || f.v.IsNull() || !f.v.IsKnown() {
		return true
	}
	ty := f.v.Type()
	if ty.IsObjectType() || ty.IsMapType() || ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		return f.v.LengthInt() == 0
	}
	return false
}

// Get returns the attribute or map element named key.
func (f Fragment) Get(key string) (cty.Value, bool) {
	if f.v == cty.NilVal || f.v.IsNull() || !f.v.IsKnown() {
		return cty.NilVal, false
	}
	ty := f.v.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(key) {
			return cty.NilVal, false
		}
		return f.v.GetAttr(key), true
	case ty.IsMapType():
		k := cty.StringVal(key)
		if !f.v.HasIndex(k).True() {
			return cty.NilVal, false
		}
		return f.v.Index(k), true
	}
	return cty.NilVal, false
}

// Has reports whether key is present and not null.
func (f Fragment) Has(key string) bool {
	v, ok := f.Get(key)
	return ok && !v.IsNull()
}

// Sub returns the nested fragment under key.
func (f Fragment) Sub(key string) Fragment {
	v, _ := f.Get(key)
	return Fragment{v: v}
}

// String reads key as a string.
func (f Fragment) String(key string) (string, bool) {
	v, ok := f.primitive(key, cty.String)
	if !ok {
		return "", false
	}
	return v.AsString(), true
}

// Bool reads key as a bool.
func (f Fragment) Bool(key string) (bool, bool) {
	v, ok := f.primitive(key, cty.Bool)
	if !ok {
		return false, false
	}
	return v.True(), true
}

// Int reads key as an integer; fractional numbers are rejected.
func (f Fragment) Int(key string) (int64, bool) {
	v, ok := f.primitive(key, cty.Number)
	if !ok {
		return 0, false
	}
	i, accuracy := v.AsBigFloat().Int64()
	if accuracy != big.Exact {
		return 0, false
	}
	return i, true
}

// Float reads key as a float64.
func (f Fragment) Float(key string) (float64, bool) {
	v, ok := f.primitive(key, cty.Number)
	if !ok {
		return 0, false
	}
	out, _ := v.AsBigFloat().Float64()
	return out, true
}

// Strings reads key as a list of strings. A single string reads as a
// one-element list.
func (f Fragment) Strings(key string) []string {
	v, ok := f.Get(key)
	if !ok || v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	if ty.IsPrimitiveType() {
		if s, err := convert.Convert(v, cty.String); err == nil && !s.IsNull() {
			return []string{s.AsString()}
		}
		return nil
	}
	if !(ty.IsListType() || ty.IsTupleType() || ty.IsSetType()) {
		return nil
	}
	var out []string
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		s, err := convert.Convert(ev, cty.String)
		if err != nil || s.IsNull() || !s.IsKnown() {
			continue
		}
		out = append(out, s.AsString())
	}
	return out
}

// Keys returns the attribute names of an object or map fragment, sorted.
func (f Fragment) Keys() []string {
	if f.v == cty.NilVal || f.v.IsNull() || !f.v.IsKnown() {
		return nil
	}
	ty := f.v.Type()
	var keys []string
	switch {
	case ty.IsObjectType():
		for name := range ty.AttributeTypes() {
			keys = append(keys, name)
		}
	case ty.IsMapType():
		for it := f.v.ElementIterator(); it.Next(); {
			k, _ := it.Element()
			keys = append(keys, k.AsString())
		}
	}
	sort.Strings(keys)
	return keys
}

// Without returns an object fragment holding every attribute except the
// listed keys.
func (f Fragment) Without(keys ...string) Fragment {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	attrs := make(map[string]cty.Value)
	for _, k := range f.Keys() {
		if drop[k] {
			continue
		}
		v, _ := f.Get(k)
		attrs[k] = v
	}
	return Fragment{v: cty.ObjectVal(attrs)}
}

func (f Fragment) primitive(key string, want cty.Type) (cty.Value, bool) {
	v, ok := f.Get(key)
	if !ok || v.IsNull() || !v.IsKnown() || !v.Type().IsPrimitiveType() {
		return cty.NilVal, false
	}
	converted, err := convert.Convert(v, want)
	if err != nil || converted.IsNull() {
		return cty.NilVal, false
	}
	return converted, true
}
