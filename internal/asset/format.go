package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"
)

// Format identifies the binary schema a generator emits and a loader
// consumes. A mismatch on either field invalidates a cache entry and rejects
// a package entry.
type Format struct {
	NameHash uint32
	Version  uint32
}

// NewFormat derives a Format from a schema name and version. The name hash is
// the first four bytes of the name's BLAKE3 digest.
func NewFormat(name string, version uint32) Format {
	sum := blake3.Sum256([]byte(name))
	return Format{
		NameHash: binary.LittleEndian.Uint32(sum[:4]),
		Version:  version,
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%08x.v%d", f.NameHash, f.Version)
}
