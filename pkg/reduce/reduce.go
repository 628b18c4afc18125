package reduce

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/topomap/pkg/record"
	"github.com/matzehuels/topomap/pkg/topology"
)

// ParentEdge is the latest parent a child reported.
type ParentEdge struct {
	Child     topology.Addr
	Parent    topology.Addr
	RSSI      float64
	Timestamp time.Time
	Row       int
}

// Edge converts the parent edge to a child->parent graph edge.
func (p ParentEdge) Edge() topology.Edge {
	return topology.Edge{From: p.Child, To: p.Parent, RSSI: p.RSSI}
}

// PairKey identifies an unordered address pair, stored with A <= B.
type PairKey struct {
	A, B topology.Addr
}

// NewPairKey returns the key for the pair regardless of argument order.
func NewPairKey(a, b topology.Addr) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// NeighborEdge is the latest observation linking two nodes.
type NeighborEdge struct {
	Pair      PairKey
	RSSI      float64
	Timestamp time.Time
	Row       int
}

// Edge converts the neighbor edge to a graph edge.
func (n NeighborEdge) Edge() topology.Edge {
	return topology.Edge{From: n.Pair.A, To: n.Pair.B, RSSI: n.RSSI}
}

// latest keeps rec under key when no record is stored yet or rec is newer.
func latest[K comparable](best map[K]record.Observation, key K, rec record.Observation) {
	if cur, ok := best[key]; !ok || rec.NewerThan(cur) {
		best[key] = rec
	}
}

// LatestParents returns, per child, the newest PARENT-role record.
func LatestParents(records []record.Observation) map[topology.Addr]ParentEdge {
	best := make(map[topology.Addr]record.Observation)
	for _, r := range records {
		if !r.Role.IsParent() {
			continue
		}
		latest(best, topology.Addr(r.Source), r)
	}

	out := make(map[topology.Addr]ParentEdge, len(best))
	for child, r := range best {
		out[child] = ParentEdge{
			Child:     child,
			Parent:    topology.Addr(r.Address),
			RSSI:      r.RSSI,
			Timestamp: r.Timestamp,
			Row:       r.Row,
		}
	}
	return out
}

// LatestNeighbors returns, per unordered pair, the newest record linking the
// two addresses. Rows where Source equals Address are skipped.
func LatestNeighbors(records []record.Observation) map[PairKey]NeighborEdge {
	best := make(map[PairKey]record.Observation)
	for _, r := range records {
		if r.Source == r.Address {
			continue
		}
		latest(best, NewPairKey(topology.Addr(r.Source), topology.Addr(r.Address)), r)
	}

	out := make(map[PairKey]NeighborEdge, len(best))
	for k, r := range best {
		out[k] = NeighborEdge{Pair: k, RSSI: r.RSSI, Timestamp: r.Timestamp, Row: r.Row}
	}
	return out
}

// ParentCandidates returns, per Address, the newest record of any role,
// kept only when Address > 1 and the record names a parent. The newest row
// is picked before filtering, so a newer parentless row hides older ones.
func ParentCandidates(records []record.Observation) map[topology.Addr]ParentEdge {
	best := make(map[topology.Addr]record.Observation)
	for _, r := range records {
		latest(best, topology.Addr(r.Address), r)
	}

	out := make(map[topology.Addr]ParentEdge)
	for addr, r := range best {
		if addr <= 1 || !r.HasParent() {
			continue
		}
		out[addr] = ParentEdge{
			Child:     addr,
			Parent:    topology.Addr(r.Parent),
			RSSI:      r.ParentRSSI,
			Timestamp: r.Timestamp,
			Row:       r.Row,
		}
	}
	return out
}

// WithFallback returns a copy of primary extended with candidate edges for
// children primary does not already cover.
func WithFallback(primary, candidates map[topology.Addr]ParentEdge) map[topology.Addr]ParentEdge {
	out := maps.Clone(primary)
	if out == nil {
		out = make(map[topology.Addr]ParentEdge, len(candidates))
	}
	for child, e := range candidates {
		if _, ok := out[child]; !ok {
			out[child] = e
		}
	}
	return out
}

// Result bundles every reduced view of a dataset.
type Result struct {
	Parents    map[topology.Addr]ParentEdge
	Neighbors  map[PairKey]NeighborEdge
	Candidates map[topology.Addr]ParentEdge
	// Addresses lists every Source, Address and positive Parent seen, sorted.
	Addresses []topology.Addr
}

// Reduce derives all views from records.
func Reduce(records []record.Observation) Result {
	seen := make(map[topology.Addr]struct{})
	for _, r := range records {
		seen[topology.Addr(r.Source)] = struct{}{}
		seen[topology.Addr(r.Address)] = struct{}{}
		if r.HasParent() {
			seen[topology.Addr(r.Parent)] = struct{}{}
		}
	}
	return Result{
		Parents:    LatestParents(records),
		Neighbors:  LatestNeighbors(records),
		Candidates: ParentCandidates(records),
		Addresses:  slices.Sorted(maps.Keys(seen)),
	}
}

// TreeEdges returns the parent edges used for the routing tree, with
// candidate edges merged in when fallback is set.
func (r Result) TreeEdges(fallback bool) []topology.Edge {
	parents := r.Parents
	if fallback {
		parents = WithFallback(r.Parents, r.Candidates)
	}
	return ParentEdges(parents)
}

// ParentEdges flattens a parent map into graph edges ordered by child.
func ParentEdges(m map[topology.Addr]ParentEdge) []topology.Edge {
	out := make([]topology.Edge, 0, len(m))
	for _, child := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[child].Edge())
	}
	return out
}

// NeighborEdges flattens a neighbor map into graph edges ordered by pair.
func NeighborEdges(m map[PairKey]NeighborEdge) []topology.Edge {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(x, y PairKey) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	out := make([]topology.Edge, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k].Edge())
	}
	return out
}
