// Package pkg provides the libraries behind topomap, a topology map
// generator for wireless sensor networks.
//
// # Overview
//
// A discovery log is a CSV in which every node reports its neighbors and
// its current parent towards the sink. topomap keeps the newest parent of
// every node and the newest observation of every link, lays the routing
// tree out from the sink and draws it next to the adjacency graph.
//
// # Architecture
//
//	discovery log (CSV)
//	         ↓
//	    [record] package (typed observations, malformed rows reported)
//	         ↓
//	    [reduce] package (latest parent per node, latest link per pair)
//	         ↓
//	    [topology] package (tree and adjacency graphs, sentinel removed)
//	         ↓
//	    [layout] package (tree from the sink, circle for links)
//	         ↓
//	    [render] packages (DOT panels, two-panel PNG figure)
//
// The [pipeline] package runs these stages in order, caches rendered
// panels through [cache], reports progress through [observability] and
// writes the archive and latest figures.
//
// # Quick Start
//
//	r := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Sink = 1
//	res, err := r.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Paths) // [results/network_graph_<ts>.png results/network_graph.png]
//
// [record]: github.com/matzehuels/topomap/pkg/record
// [reduce]: github.com/matzehuels/topomap/pkg/reduce
// [topology]: github.com/matzehuels/topomap/pkg/topology
// [layout]: github.com/matzehuels/topomap/pkg/layout
// [render]: github.com/matzehuels/topomap/pkg/render
// [pipeline]: github.com/matzehuels/topomap/pkg/pipeline
// [cache]: github.com/matzehuels/topomap/pkg/cache
// [observability]: github.com/matzehuels/topomap/pkg/observability
package pkg
