package topology

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"strconv"
)

var (
	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when From == To. A node never
	// hears itself, so such rows are logging noise.
	ErrSelfLoop = errors.New("self loop")
)

// Addr is a node's radio address.
type Addr int

// Sentinel is the placeholder address written for unset fields.
const Sentinel Addr = 0

// String returns the decimal address, which is also the node label.
func (a Addr) String() string { return strconv.Itoa(int(a)) }

// Edge is a link between two nodes with the signal strength observed on it.
// In a directed tree graph From is the child and To its parent.
type Edge struct {
	From Addr
	To   Addr
	RSSI float64
}

type edgeKey struct{ from, to Addr }

// Graph is a set of addresses joined by RSSI-labelled edges.
//
// The zero value is not usable; create graphs with [NewDirected] or
// [NewUndirected].
type Graph struct {
	directed bool
	nodes    map[Addr]struct{}
	edges    map[edgeKey]Edge
	outgoing map[Addr][]Addr
	incoming map[Addr][]Addr
}

// NewDirected creates an empty directed graph.
func NewDirected() *Graph { return newGraph(true) }

// NewUndirected creates an empty undirected graph.
func NewUndirected() *Graph { return newGraph(false) }

func newGraph(directed bool) *Graph {
	return &Graph{
		directed: directed,
		nodes:    make(map[Addr]struct{}),
		edges:    make(map[edgeKey]Edge),
		outgoing: make(map[Addr][]Addr),
		incoming: make(map[Addr][]Addr),
	}
}

// Directed reports whether edges have a direction.
func (g *Graph) Directed() bool { return g.directed }

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(a Addr) {
	g.nodes[a] = struct{}{}
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(a Addr) bool {
	_, ok := g.nodes[a]
	return ok
}

// AddEdge adds an edge between two existing nodes, replacing any edge that
// already joins them (in either orientation for undirected graphs).
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing, or ErrSelfLoop if From == To.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == e.To {
		return ErrSelfLoop
	}
	if !g.HasNode(e.From) {
		return ErrUnknownSourceNode
	}
	if !g.HasNode(e.To) {
		return ErrUnknownTargetNode
	}
	if !g.directed && e.From > e.To {
		e.From, e.To = e.To, e.From
	}

	k := edgeKey{e.From, e.To}
	if _, exists := g.edges[k]; !exists {
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
	}
	g.edges[k] = e
	return nil
}

// Edge returns the edge joining a and b, honoring direction for directed
// graphs.
func (g *Graph) Edge(a, b Addr) (Edge, bool) {
	if !g.directed && a > b {
		a, b = b, a
	}
	e, ok := g.edges[edgeKey{a, b}]
	return e, ok
}

// RemoveNode deletes a node and every edge touching it.
// Removing a missing node is a no-op.
func (g *Graph) RemoveNode(a Addr) {
	if !g.HasNode(a) {
		return
	}
	for _, to := range g.outgoing[a] {
		delete(g.edges, edgeKey{a, to})
		g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(x Addr) bool { return x == a })
	}
	for _, from := range g.incoming[a] {
		delete(g.edges, edgeKey{from, a})
		g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(x Addr) bool { return x == a })
	}
	delete(g.outgoing, a)
	delete(g.incoming, a)
	delete(g.nodes, a)
}

// Nodes returns all addresses in ascending order.
func (g *Graph) Nodes() []Addr {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Edges returns a copy of all edges ordered by (From, To).
func (g *Graph) Edges() []Edge {
	edges := slices.Collect(maps.Values(g.edges))
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// Predecessors returns the nodes with an edge into a, in ascending order.
// In a tree graph these are a's children.
func (g *Graph) Predecessors(a Addr) []Addr {
	return slices.Sorted(slices.Values(g.incoming[a]))
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
