// Package layout computes 2D node positions for the topology figure.
//
// # Tree Layout
//
// [Tree] places the sink at the origin and walks down the routing tree in
// pre-order. The k children of a node are spread horizontally around it
// with centering factors from [Offsets], each scaled by [Options.Spacing],
// and drop by one vertical [Step]:
//
//	pos := layout.Tree(sink, graph, layout.DefaultOptions())
//
// A node keeps the first position it is given. A second visit through
// another path, or around a cycle, stops there.
//
// Two step policies exist. [Fixed] drops every level by a constant.
// [RSSIWeighted] drops each child by scale*|rssi|, so weaker links hang
// lower. The latter is a visual cue, not a distance estimate.
//
// # Circular Layout
//
// [Circular] spreads nodes evenly on the unit circle and is used for the
// adjacency panel. [Fit] maps any positions into a drawing box.
package layout
