package layout

import "github.com/matzehuels/topomap/pkg/topology"

// Point is a position in layout units, y growing upwards.
type Point struct {
	X, Y float64
}

// Positions maps nodes to their layout coordinates.
type Positions map[topology.Addr]Point

// ChildIndex looks up a node's children in ascending address order.
// [*topology.Graph] implements it for directed child->parent graphs.
type ChildIndex interface {
	Children(topology.Addr) []topology.Child
}

// Offsets returns the horizontal centering factor i-(k-1)/2 for each of k
// children. The factors sum to zero.
func Offsets(k int) []float64 {
	out := make([]float64, k)
	mid := float64(k-1) / 2
	for i := range out {
		out[i] = float64(i) - mid
	}
	return out
}

// Tree lays out every node reachable from root. Nodes that cannot be reached
// get no position. The result is a fresh map owned by the caller.
func Tree(root topology.Addr, children ChildIndex, opts Options) Positions {
	pos := make(Positions)
	place(pos, children, opts, root, Point{})
	return pos
}

func place(pos Positions, idx ChildIndex, opts Options, n topology.Addr, at Point) {
	if _, done := pos[n]; done {
		return
	}
	pos[n] = at

	kids := idx.Children(n)
	offsets := Offsets(len(kids))
	for i, c := range kids {
		next := Point{
			X: at.X + offsets[i]*opts.Spacing,
			Y: opts.Step.Apply(at.Y, c.RSSI),
		}
		place(pos, idx, opts, c.Addr, next)
	}
}
