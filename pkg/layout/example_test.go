package layout_test

import (
	"fmt"

	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/topology"
)

func ExampleTree() {
	g := topology.ParentGraph([]topology.Edge{
		{From: 2, To: 1, RSSI: -40},
		{From: 3, To: 2, RSSI: -55},
	})

	pos := layout.Tree(1, g, layout.DefaultOptions())
	for _, n := range []topology.Addr{1, 2, 3} {
		fmt.Printf("%d: (%g, %g)\n", n, pos[n].X, pos[n].Y)
	}
	// Output:
	// 1: (0, 0)
	// 2: (0, -1)
	// 3: (0, -2)
}

func ExampleOffsets() {
	fmt.Println(layout.Offsets(3))
	// Output: [-1 0 1]
}
