// Package render turns positioned topology graphs into images.
//
// Rendering happens in two steps. The [nodelink] subpackage writes each
// graph as Graphviz DOT with every node pinned at its layout position and
// rasterizes it with the neato engine. The [figure] subpackage then places
// the two panel images side by side under a timestamped title and encodes
// the result as PNG.
//
//	treeDOT := nodelink.ToDOT(tree, treePos, nodelink.TreeOptions())
//	left, _, err := nodelink.RenderImage(ctx, treeDOT)
//	...
//	png, err := figure.Compose(
//	    figure.Panel{Title: figure.TreeTitle, Image: left},
//	    figure.Panel{Title: figure.AdjacencyTitle, Image: right},
//	    figure.DefaultOptions(time.Now()),
//	)
//
// [nodelink]: github.com/matzehuels/topomap/pkg/render/nodelink
// [figure]: github.com/matzehuels/topomap/pkg/render/figure
package render
