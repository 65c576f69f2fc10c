package bvh

// Arena is an index-addressed, pair-allocating node store. Nodes are
// never allocated singly: a builder always calls AllocatePair once per
// interior subdivision, receiving the left child's index with the
// right child guaranteed at index+1. Slice growth may move the
// backing array, so callers must re-resolve any held index after a
// call to AllocatePair made during their own traversal — holding a
// *SubBVHNode across an allocation is the one aliasing hazard this
// type has.
type Arena struct {
	nodes []SubBVHNode
}

// NewArena returns an empty arena with room for capacityHint nodes
// preallocated, avoiding repeated reallocation during a build whose
// node count is roughly known in advance.
func NewArena(capacityHint int) *Arena {
	return &Arena{nodes: make([]SubBVHNode, 0, capacityHint)}
}

// AllocatePair appends two zero-valued nodes (TriangleCount 0, so they
// read as interior until the caller fills them in) and returns the
// index of the first (left) one.
func (a *Arena) AllocatePair() uint32 {
	first := uint32(len(a.nodes))
	a.nodes = append(a.nodes, SubBVHNode{}, SubBVHNode{})
	return first
}

// Get returns the node at index by value.
func (a *Arena) Get(index uint32) SubBVHNode {
	return a.nodes[index]
}

// Set overwrites the node at index.
func (a *Arena) Set(index uint32, n SubBVHNode) {
	a.nodes[index] = n
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Nodes returns the arena's backing slice. The result aliases internal
// state and must be treated as read-only by callers that intend to
// keep building; builders call this once at the very end to hand off
// the finished node array.
func (a *Arena) Nodes() []SubBVHNode {
	return a.nodes
}
