package topology

// ParentGraph builds a directed graph with one child->parent edge per entry.
// Self-references are ignored. Nothing is pruned: unreachable nodes and the
// sentinel address stay in the graph, which is what the tree layout walks.
func ParentGraph(parents []Edge) *Graph {
	g := NewDirected()
	for _, e := range parents {
		g.AddNode(e.From)
		g.AddNode(e.To)
		_ = g.AddEdge(e) // only ErrSelfLoop is possible here
	}
	return g
}

// BuildTree returns the routing tree rooted at root: the parent edges among
// nodes reachable from root, without root's own parent edge and without the
// sentinel node. The root is present even with no edges, unless root is the
// sentinel itself: node 0 is never part of a tree.
func BuildTree(root Addr, parents []Edge) *Graph {
	full := ParentGraph(parents)
	tree := NewDirected()
	for _, a := range full.Reachable(root) {
		tree.AddNode(a)
	}
	for _, e := range full.Edges() {
		if e.From == root || !tree.HasNode(e.From) || !tree.HasNode(e.To) {
			continue
		}
		_ = tree.AddEdge(e)
	}
	tree.RemoveNode(Sentinel)
	return tree
}

// BuildAdjacency returns the undirected radio-link graph. Neighbor edges are
// added first, then every parent edge, so a parent link's RSSI replaces a
// neighbor sighting of the same pair. The sentinel node is removed.
func BuildAdjacency(neighbors, parents []Edge) *Graph {
	g := NewUndirected()
	for _, set := range [][]Edge{neighbors, parents} {
		for _, e := range set {
			g.AddNode(e.From)
			g.AddNode(e.To)
			_ = g.AddEdge(e)
		}
	}
	g.RemoveNode(Sentinel)
	return g
}
