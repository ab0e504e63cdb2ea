// Package namespace maps slash-delimited asset names to live asset instances.
//
// Directory and asset nodes live in arenas and link to each other by arena
// reference: each directory holds the head of its asset list and of its child
// list, and each node links to its next sibling. Names are interned in an
// arena string pool. Unload destroys every instance and releases all nodes at
// once.
//
// A Tree is not safe for concurrent use.
package namespace

import (
	"strings"

	"github.com/specialistvlad/assetpipe/internal/arena"
	"github.com/specialistvlad/assetpipe/internal/plugin"
)

type dirNode struct {
	name        arena.Str
	firstAsset  arena.Ref
	firstChild  arena.Ref
	nextSibling arena.Ref
}

type assetNode struct {
	name     arena.Str
	loader   arena.Str
	instance plugin.Instance
	next     arena.Ref
}

// Dir identifies a directory node of a Tree.
type Dir struct {
	ref arena.Ref
}

// Entry is a loaded asset as seen through the tree.
type Entry struct {
	// Path is the asset's full name from the tree root, without a leading
	// slash.
	Path     string
	Loader   string
	Instance plugin.Instance
}

// Tree is the mount namespace.
type Tree struct {
	dirs    *arena.Arena[dirNode]
	assets  *arena.Arena[assetNode]
	strings *arena.Strings
	root    arena.Ref
}

// New creates a tree holding only the root directory.
func New() *Tree {
	t := &Tree{
		dirs:    arena.New[dirNode](0),
		assets:  arena.New[assetNode](0),
		strings: arena.NewStrings(0),
	}
	t.root = t.dirs.Alloc(dirNode{})
	return t
}

// Root returns the root directory.
func (t *Tree) Root() Dir { return Dir{ref: t.root} }

// Len reports the number of assets in the tree.
func (t *Tree) Len() int { return t.assets.Len() }

// FindOrCreate walks path from the directory from, one segment at a time.
// Missing directories are created when create is set; otherwise the walk
// stops and reports false. A leading slash and empty segments are ignored.
func (t *Tree) FindOrCreate(from Dir, path string, create bool) (Dir, bool) {
	cur := from.ref
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "." {
			continue
		}
		child, ok := t.child(cur, segment)
		if !ok {
			if !create {
				return Dir{}, false
			}
			child = t.addChild(cur, segment)
		}
		cur = child
	}
	return Dir{ref: cur}, true
}

func (t *Tree) child(parent arena.Ref, name string) (arena.Ref, bool) {
	for ref := t.dirs.Get(parent).firstChild; ref != arena.None; {
		d := t.dirs.Get(ref)
		if t.strings.Get(d.name) == name {
			return ref, true
		}
		ref = d.nextSibling
	}
	return arena.None, false
}

// addChild appends a directory so iteration follows creation order.
func (t *Tree) addChild(parent arena.Ref, name string) arena.Ref {
	ref := t.dirs.Alloc(dirNode{name: t.strings.Intern(name)})
	p := t.dirs.Get(parent)
	if p.firstChild == arena.None {
		p.firstChild = ref
		return ref
	}
	last := p.firstChild
	for t.dirs.Get(last).nextSibling != arena.None {
		last = t.dirs.Get(last).nextSibling
	}
	t.dirs.Get(last).nextSibling = ref
	return ref
}

// Insert attaches an asset instance to dir under name. If dir already holds
// an asset of that name, its instance is destroyed and replaced.
func (t *Tree) Insert(dir Dir, name, loader string, instance plugin.Instance) {
	d := t.dirs.Get(dir.ref)
	last := arena.None
	for ref := d.firstAsset; ref != arena.None; ref = t.assets.Get(ref).next {
		a := t.assets.Get(ref)
		if t.strings.Get(a.name) == name {
			destroy(a.instance)
			a.instance = instance
			if t.strings.Get(a.loader) != loader {
				a.loader = t.strings.Intern(loader)
			}
			return
		}
		last = ref
	}

	ref := t.assets.Alloc(assetNode{
		name:     t.strings.Intern(name),
		loader:   t.strings.Intern(loader),
		instance: instance,
	})
	if last == arena.None {
		t.dirs.Get(dir.ref).firstAsset = ref
	} else {
		t.assets.Get(last).next = ref
	}
}

// Find looks up an asset by its full path from the root.
func (t *Tree) Find(path string) (Entry, bool) {
	path = strings.Trim(path, "/")
	parent, base := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		parent, base = path[:i], path[i+1:]
	}
	dir, ok := t.FindOrCreate(t.Root(), parent, false)
	if !ok {
		return Entry{}, false
	}
	for ref := t.dirs.Get(dir.ref).firstAsset; ref != arena.None; {
		a := t.assets.Get(ref)
		if t.strings.Get(a.name) == base {
			return Entry{Path: path, Loader: t.strings.Get(a.loader), Instance: a.instance}, true
		}
		ref = a.next
	}
	return Entry{}, false
}

// Walk visits every asset under from in pre-order: a directory's own assets
// first, then each child directory in turn. prefix is prepended to reported
// paths. Returning false from fn stops the walk.
func (t *Tree) Walk(from Dir, prefix string, fn func(Entry) bool) {
	t.walk(from.ref, strings.Trim(prefix, "/"), fn)
}

func (t *Tree) walk(ref arena.Ref, prefix string, fn func(Entry) bool) bool {
	d := t.dirs.Get(ref)
	for a := d.firstAsset; a != arena.None; {
		node := t.assets.Get(a)
		e := Entry{
			Path:     join(prefix, t.strings.Get(node.name)),
			Loader:   t.strings.Get(node.loader),
			Instance: node.instance,
		}
		if !fn(e) {
			return false
		}
		a = node.next
	}
	for c := d.firstChild; c != arena.None; {
		child := t.dirs.Get(c)
		if !t.walk(c, join(prefix, t.strings.Get(child.name)), fn) {
			return false
		}
		c = child.nextSibling
	}
	return true
}

// Unload destroys every instance, then releases all nodes and names at once.
// The tree is empty but usable afterwards.
func (t *Tree) Unload() {
	t.Walk(t.Root(), "", func(e Entry) bool {
		destroy(e.Instance)
		return true
	})
	t.dirs.Reset()
	t.assets.Reset()
	t.strings.Reset()
	t.root = t.dirs.Alloc(dirNode{})
}

func destroy(instance plugin.Instance) {
	if d, ok := instance.(plugin.Destroyer); ok {
		d.Destroy()
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
