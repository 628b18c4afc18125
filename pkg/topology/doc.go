// Package topology provides the small graph type used to draw a sensor
// network: nodes are integer radio addresses and every edge carries the
// RSSI of the link it represents.
//
// # Overview
//
// A [Graph] is either directed or undirected. The routing tree is directed,
// with one edge from each child to the parent it reported. The adjacency
// graph is undirected, with one edge per radio link that was ever heard.
//
//	g := topology.NewDirected()
//	g.AddNode(1)
//	g.AddNode(2)
//	g.AddEdge(topology.Edge{From: 2, To: 1, RSSI: -40})
//
// In an undirected graph the edge {a, b} and {b, a} are the same edge, so
// adding one replaces the other.
//
// # Sentinel Address
//
// Address [Sentinel] (0) is never a real node. Loggers write it when a field
// is unset, and assemblers call [Graph.RemoveNode] on it before rendering.
//
// # Concurrency
//
// Graph is not safe for concurrent use without external synchronization.
package topology
