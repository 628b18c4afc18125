package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/topomap/pkg/topology"
)

// Circular places nodes in ascending order on the unit circle, starting at
// angle 0 and going counter-clockwise. A single node sits at the origin.
func Circular(nodes []topology.Addr) Positions {
	sorted := slices.Sorted(slices.Values(nodes))
	sorted = slices.Compact(sorted)

	pos := make(Positions, len(sorted))
	switch len(sorted) {
	case 0:
		return pos
	case 1:
		pos[sorted[0]] = Point{}
		return pos
	}

	step := 2 * math.Pi / float64(len(sorted))
	for i, n := range sorted {
		theta := float64(i) * step
		pos[n] = Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return pos
}

// Bounds returns the bounding box of p. An empty map yields zeros.
func (p Positions) Bounds() (minPt, maxPt Point) {
	first := true
	for _, pt := range p {
		if first {
			minPt, maxPt = pt, pt
			first = false
			continue
		}
		minPt.X = min(minPt.X, pt.X)
		minPt.Y = min(minPt.Y, pt.Y)
		maxPt.X = max(maxPt.X, pt.X)
		maxPt.Y = max(maxPt.Y, pt.Y)
	}
	return minPt, maxPt
}

// Fit maps p into the box [margin, w-margin] x [margin, h-margin], scaling
// each axis on its own. An axis with no extent is centred. The y axis keeps
// its orientation (larger y stays higher).
func Fit(p Positions, w, h, margin float64) Positions {
	out := make(Positions, len(p))
	if len(p) == 0 {
		return out
	}
	lo, hi := p.Bounds()
	for n, pt := range p {
		out[n] = Point{
			X: fitAxis(pt.X, lo.X, hi.X, margin, w-margin),
			Y: fitAxis(pt.Y, lo.Y, hi.Y, margin, h-margin),
		}
	}
	return out
}

func fitAxis(v, lo, hi, from, to float64) float64 {
	if hi-lo < 1e-9 {
		return (from + to) / 2
	}
	return from + (v-lo)/(hi-lo)*(to-from)
}
