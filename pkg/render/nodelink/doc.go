// Package nodelink renders topology graphs as node-link panels via Graphviz.
//
// # Overview
//
// [ToDOT] turns a [topology.Graph] and a set of precomputed positions into
// Graphviz DOT source. Every node is pinned (pos="x,y!") so the neato engine
// draws the layout as given instead of computing its own:
//
//	dot := nodelink.ToDOT(tree, pos, nodelink.TreeOptions())
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Directed graphs become a digraph with one arrow per child->parent edge.
// Undirected graphs become a plain graph drawn with grey dotted edges. Edge
// labels show the link RSSI rounded to an integer.
//
// Nodes absent from the position map are left out together with their edges.
//
// # Options
//
// The [Options] struct controls the drawing box and styling:
//
//   - Width, Height: panel size in inches; positions are fitted into it
//   - NodeSize: circle diameter in inches
//   - EdgeColor, EdgeStyle: stroke for every edge
//   - Labels: whether RSSI labels are drawn
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
