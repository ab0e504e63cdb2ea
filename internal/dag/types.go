package dag

import (
	"sync"

	"github.com/specialistvlad/assetpipe/internal/asset"
)

// Graph is a collection of nodes and their dependencies.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by asset name.
	nodes map[string]*node
}

// node is a single vertex in the graph. Callers address nodes by name only.
type node struct {
	id string
	// deps holds the nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the nodes that depend on this node (successors).
	dependents map[string]*node
}

// Task is one discovered asset awaiting load.
type Task struct {
	// Name is the canonical asset name, relative to the mount point.
	Name      string
	Loader    string
	Generator string
	// Hash is the manifest fragment hash the task was generated under.
	Hash      uint64
	Generated *asset.Generated
}

// State is a task's position in the load state machine.
type State uint8

const (
	Initial State = iota
	Processing
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Processing:
		return "processing"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}
