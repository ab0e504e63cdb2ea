package asset

import (
	"slices"
	"strings"
)

// Flags alter how a generated asset is cached and packaged.
type Flags uint32

const (
	// NeverCache keeps the result out of the content cache.
	NeverCache Flags = 1 << iota
	// NeverPackage keeps the result out of package files.
	NeverPackage
	// DisableCompression stores the payload raw in package files.
	DisableCompression
)

// Has reports whether every bit of other is set in f.
func (f Flags) Has(other Flags) bool { return f&other == other }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(NeverCache) {
		parts = append(parts, "never_cache")
	}
	if f.Has(NeverPackage) {
		parts = append(parts, "never_package")
	}
	if f.Has(DisableCompression) {
		parts = append(parts, "disable_compression")
	}
	return strings.Join(parts, "|")
}

// SideStream is a named auxiliary blob produced alongside an asset's main
// payload, such as a mip chain or a debug symbol table.
type SideStream struct {
	Name string
	Data []byte
}

// Generated is the output of one generator invocation. FileDependencies are
// slash-separated paths relative to the manifest directory; LoadDependencies
// are asset names, relative to the producing asset's directory unless they
// start with a slash.
type Generated struct {
	Data             []byte
	FileDependencies []string
	LoadDependencies []string
	SideStreams      []SideStream
	Flags            Flags
	Format           Format
}

// SideStream returns the data of the named side stream.
func (g *Generated) SideStream(name string) ([]byte, bool) {
	for _, s := range g.SideStreams {
		if s.Name == name {
			return s.Data, true
		}
	}
	return nil, false
}

// Equal reports whether two generated assets carry identical content.
func (g *Generated) Equal(other *Generated) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.Flags == other.Flags &&
		g.Format == other.Format &&
		slices.Equal(g.Data, other.Data) &&
		slices.Equal(g.FileDependencies, other.FileDependencies) &&
		slices.Equal(g.LoadDependencies, other.LoadDependencies) &&
		slices.EqualFunc(g.SideStreams, other.SideStreams, func(a, b SideStream) bool {
			return a.Name == b.Name && slices.Equal(a.Data, b.Data)
		})
}
