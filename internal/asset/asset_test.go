package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFormat_Deterministic(t *testing.T) {
	a := NewFormat("Texture2D", 3)
	b := NewFormat("Texture2D", 3)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewFormat("Texture2D", 4))
	assert.NotEqual(t, a.NameHash, NewFormat("Mesh", 3).NameHash)
	assert.Contains(t, a.String(), ".v3")
}

func TestFlags(t *testing.T) {
	f := NeverCache | DisableCompression
	assert.True(t, f.Has(NeverCache))
	assert.False(t, f.Has(NeverPackage))
	assert.Equal(t, "never_cache|disable_compression", f.String())
	assert.Equal(t, "none", Flags(0).String())
}

func TestGenerated_Equal(t *testing.T) {
	g := &Generated{
		Data:             []byte{1, 2},
		FileDependencies: []string{"a.png"},
		SideStreams:      []SideStream{{Name: "mips", Data: []byte{9}}},
		Format:           NewFormat("Texture2D", 1),
	}
	clone := &Generated{
		Data:             []byte{1, 2},
		FileDependencies: []string{"a.png"},
		SideStreams:      []SideStream{{Name: "mips", Data: []byte{9}}},
		Format:           NewFormat("Texture2D", 1),
	}
	assert.True(t, g.Equal(clone))

	clone.SideStreams[0].Data = []byte{8}
	assert.False(t, g.Equal(clone))
	assert.False(t, g.Equal(nil))

	data, ok := g.SideStream("mips")
	assert.True(t, ok)
	assert.Equal(t, []byte{9}, data)
	_, ok = g.SideStream("missing")
	assert.False(t, ok)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "textures/tex.png", Clean("/textures//./tex.png"))
	assert.Equal(t, "a/b", Clean(`a\b`))
	assert.Equal(t, "textures", ParentPath("textures/tex.png"))
	assert.Equal(t, "", ParentPath("tex.png"))
	assert.Equal(t, "tex.png", BaseName("textures/tex.png"))

	assert.Equal(t, "materials/stone.png", ResolveName("materials/stone.mat", "stone.png"))
	assert.Equal(t, "shaders/lit.wgsl", ResolveName("materials/stone.mat", "../shaders/lit.wgsl"))
	assert.Equal(t, "shaders/lit.wgsl", ResolveName("materials/stone.mat", "/shaders/lit.wgsl"))
	assert.Equal(t, "b", ResolveName("a", "b"))
}
