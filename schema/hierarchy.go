package schema

import "fmt"

// HierarchyNode is one node of a factor hierarchy. Nodes are arena-allocated
// inside a Hierarchy and refer to each other by index, never by pointer.
type HierarchyNode struct {
	Name     string // Unique across the whole hierarchy
	Parent   int    // Index of the parent node, -1 for the root
	Children []int  // Indices of child nodes, in insertion order
}

// Leaf reports whether the node has no children, i.e. names a factor.
func (n HierarchyNode) Leaf() bool { return len(n.Children) == 0 }

// Hierarchy is a rooted tree of named categories whose leaves are exactly
// the factor names of a problem. The root carries weight 1 by convention and
// sibling weights sum to their parent's weight.
type Hierarchy struct {
	nodes []HierarchyNode
	index map[string]int
}

// NewHierarchy creates a hierarchy holding only the named root.
func NewHierarchy(root string) *Hierarchy {
	h := &Hierarchy{index: map[string]int{root: 0}}
	h.nodes = append(h.nodes, HierarchyNode{Name: root, Parent: -1})
	return h
}

// AddNode inserts a child under the named parent and returns its index.
func (h *Hierarchy) AddNode(parent, name string) (int, error) {
	p, ok := h.index[parent]
	if !ok {
		return 0, &ConfigError{Op: "hierarchy", Msg: fmt.Sprintf("unknown parent node %q", parent)}
	}
	if _, dup := h.index[name]; dup {
		return 0, &ConfigError{Op: "hierarchy", Msg: fmt.Sprintf("duplicate node name %q", name)}
	}
	idx := len(h.nodes)
	h.nodes = append(h.nodes, HierarchyNode{Name: name, Parent: p})
	h.nodes[p].Children = append(h.nodes[p].Children, idx)
	h.index[name] = idx
	return idx, nil
}

// Root returns the index of the root node, always 0.
func (h *Hierarchy) Root() int { return 0 }

// Node returns the index of the named node.
func (h *Hierarchy) Node(name string) (int, bool) {
	idx, ok := h.index[name]
	return idx, ok
}

// At returns the node at the given index.
func (h *Hierarchy) At(idx int) HierarchyNode { return h.nodes[idx] }

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Names returns all node names in arena order (root first).
func (h *Hierarchy) Names() []string {
	names := make([]string, len(h.nodes))
	for i, n := range h.nodes {
		names[i] = n.Name
	}
	return names
}

// Leaves returns the leaf names under the node at idx, in depth-first order.
func (h *Hierarchy) Leaves(idx int) []string {
	var out []string
	var walk func(i int)
	walk = func(i int) {
		n := h.nodes[i]
		if n.Leaf() {
			out = append(out, n.Name)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(idx)
	return out
}

// Subtree returns the indices of all nodes under (and including) idx.
func (h *Hierarchy) Subtree(idx int) []int {
	var out []int
	var walk func(i int)
	walk = func(i int) {
		out = append(out, i)
		for _, c := range h.nodes[i].Children {
			walk(c)
		}
	}
	walk(idx)
	return out
}

// ValidateLeaves checks that the hierarchy's leaves are exactly the given
// factor names, each appearing under exactly one leaf.
func (h *Hierarchy) ValidateLeaves(factors []string) error {
	leaves := h.Leaves(h.Root())
	seen := make(map[string]struct{}, len(leaves))
	for _, l := range leaves {
		if _, dup := seen[l]; dup {
			return &ConfigError{Op: "hierarchy", Factor: l, Msg: "factor appears under two leaves"}
		}
		seen[l] = struct{}{}
	}
	for _, f := range factors {
		if _, ok := seen[f]; !ok {
			return &ConfigError{Op: "hierarchy", Factor: f, Msg: "factor missing from hierarchy leaves"}
		}
		delete(seen, f)
	}
	for extra := range seen {
		return &ConfigError{Op: "hierarchy", Factor: extra, Msg: "leaf does not name a factor"}
	}
	return nil
}
