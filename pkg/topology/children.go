package topology

import "slices"

// Child is a node attached below a parent, with the RSSI of its parent link.
type Child struct {
	Addr Addr
	RSSI float64
}

// Children returns the nodes whose parent edge points at a, in ascending
// address order. It is meaningful on directed tree graphs, where edges run
// child to parent.
func (g *Graph) Children(a Addr) []Child {
	preds := g.Predecessors(a)
	out := make([]Child, 0, len(preds))
	for _, p := range preds {
		out = append(out, Child{Addr: p, RSSI: g.edges[edgeKey{p, a}].RSSI})
	}
	return out
}

// Reachable returns root and every node found by walking from parents to
// their children, in ascending order. A root that is not in the graph yields
// just the root.
func (g *Graph) Reachable(root Addr) []Addr {
	seen := map[Addr]bool{root: true}
	queue := []Addr{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range g.incoming[n] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	out := make([]Addr, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
