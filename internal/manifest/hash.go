package manifest

import (
	"encoding/binary"
	"io"

	"github.com/zclconf/go-cty/cty"
	"github.com/zeebo/blake3"
)

// WildcardHash is the hash of an empty fragment. A cache entry stored with it
// matches any expected hash.
const WildcardHash uint64 = 0

// Hash computes the cache key of a fragment: a structural hash over its keys
// and scalar values. List and tuple order matters; object keys are visited
// in sorted order, so reordering attributes in a manifest keeps the key. An undefined or empty fragment hashes
// to WildcardHash; any other fragment never does.
func Hash(f Fragment) uint64 {
	if f.IsEmpty() {
		return WildcardHash
	}
	h := blake3.New()
	writeValue(h, f.v)
	out := binary.LittleEndian.Uint64(h.Sum(nil)[:8])
	if out == WildcardHash {
		out = 1
	}
	return out
}

func writeValue(w io.Writer, v cty.Value) {
	switch {
	case v.IsNull():
		writeTag(w, 'n')
		return
	case !v.IsKnown():
		writeTag(w, 'u')
		return
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		writeTag(w, 's')
		writeString(w, v.AsString())
	case ty == cty.Number:
		writeTag(w, 'd')
		writeString(w, v.AsBigFloat().Text('g', -1))
	case ty == cty.Bool:
		writeTag(w, 'b')
		if v.True() {
			writeTag(w, 1)
		} else {
			writeTag(w, 0)
		}
	case ty.IsObjectType() || ty.IsMapType():
		writeTag(w, 'o')
		writeLength(w, v.LengthInt())
		// Object and map iteration is ordered by key.
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			writeString(w, k.AsString())
			writeValue(w, ev)
		}
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		writeTag(w, 'l')
		writeLength(w, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			writeValue(w, ev)
		}
	default:
		writeTag(w, '?')
		writeString(w, ty.FriendlyName())
	}
}

func writeTag(w io.Writer, tag byte) {
	_, _ = w.Write([]byte{tag})
}

func writeLength(w io.Writer, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, _ = w.Write(buf[:])
}

func writeString(w io.Writer, s string) {
	writeLength(w, len(s))
	_, _ = io.WriteString(w, s)
}
