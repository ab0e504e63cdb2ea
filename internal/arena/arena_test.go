package arena

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	name string
	next Ref
}

func TestArena_AllocAcrossChunks(t *testing.T) {
	a := New[node](4)
	var refs []Ref
	for i := 0; i < 10; i++ {
		refs = append(refs, a.Alloc(node{name: string(rune('a' + i))}))
	}
	assert.Equal(t, 10, a.Len())

	// Pointers taken before growth must stay valid after it.
	first := a.Get(refs[0])
	for i := 0; i < 20; i++ {
		a.Alloc(node{})
	}
	assert.Equal(t, "a", first.name)

	for i, ref := range refs {
		assert.NotEqual(t, None, ref)
		assert.Equal(t, string(rune('a'+i)), a.Get(ref).name)
	}
}

func TestArena_IntrusiveList(t *testing.T) {
	a := New[node](0)
	head := None
	for _, name := range []string{"c", "b", "a"} {
		head = a.Alloc(node{name: name, next: head})
	}

	var got []string
	for ref := head; ref != None; ref = a.Get(ref).next {
		got = append(got, a.Get(ref).name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestArena_Reset(t *testing.T) {
	a := New[node](2)
	ref := a.Alloc(node{name: "x"})
	a.Reset()
	assert.Zero(t, a.Len())
	assert.Panics(t, func() { a.Get(ref) })

	again := a.Alloc(node{name: "y"})
	assert.Equal(t, ref, again, "references restart after reset")
	assert.Equal(t, "y", a.Get(again).name)
}

func TestArena_GetNonePanics(t *testing.T) {
	a := New[int](0)
	assert.Panics(t, func() { a.Get(None) })
}

func TestStrings_Intern(t *testing.T) {
	p := NewStrings(8)
	short := p.Intern("tex")
	long := p.Intern(strings.Repeat("z", 20))
	empty := p.Intern("")
	next := p.Intern("mesh")

	assert.Equal(t, "tex", p.Get(short))
	assert.Equal(t, strings.Repeat("z", 20), p.Get(long))
	assert.Equal(t, "", p.Get(empty))
	assert.Equal(t, "mesh", p.Get(next))
	assert.Equal(t, 27, p.Bytes())

	p.Reset()
	require.Zero(t, p.Bytes())
	assert.Equal(t, "a", p.Get(p.Intern("a")))
}
