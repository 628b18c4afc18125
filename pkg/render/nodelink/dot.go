package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/topology"
)

// Options configures panel rendering.
type Options struct {
	Width    float64 // drawing width in inches
	Height   float64 // drawing height in inches
	Margin   float64 // inset from each side in inches
	NodeSize float64 // node diameter in inches

	NodeColor string
	EdgeColor string
	EdgeStyle string // Graphviz style, e.g. "solid" or "dotted"
	Labels    bool   // draw RSSI edge labels
}

// TreeOptions returns the styling used for the routing tree panel.
func TreeOptions() Options {
	return Options{
		Width:     7.5,
		Height:    7,
		Margin:    0.5,
		NodeSize:  0.55,
		NodeColor: "#1f77b4bf",
		EdgeColor: "black",
		EdgeStyle: "solid",
		Labels:    true,
	}
}

// AdjacencyOptions returns the styling used for the adjacency panel.
func AdjacencyOptions() Options {
	o := TreeOptions()
	o.EdgeColor = "grey"
	o.EdgeStyle = "dotted"
	return o
}

// ToDOT converts a graph and its positions to pinned Graphviz DOT source.
// The result can be rendered with [RenderPNG] or [RenderImage].
func ToDOT(g *topology.Graph, pos layout.Positions, opts Options) string {
	visible := make(layout.Positions, g.NodeCount())
	for _, n := range g.Nodes() {
		if p, ok := pos[n]; ok {
			visible[n] = p
		}
	}
	fitted := layout.Fit(visible, opts.Width, opts.Height, opts.Margin)

	kind, arrow := "graph", "--"
	if g.Directed() {
		kind, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	fmt.Fprintf(&buf, "  size=\"%.2f,%.2f!\";\n", opts.Width, opts.Height)
	fmt.Fprintf(&buf, "  node [shape=circle, fixedsize=true, width=%.2f, style=filled, fillcolor=%q, color=%q, fontsize=14];\n",
		opts.NodeSize, opts.NodeColor, opts.NodeColor)
	fmt.Fprintf(&buf, "  edge [color=%q, style=%q, fontsize=11, arrowsize=0.7];\n", opts.EdgeColor, opts.EdgeStyle)
	buf.WriteString("\n")

	// Invisible corners keep the pinned bounding box identical across runs.
	fmt.Fprintf(&buf, "  \"__bl\" [style=invis, label=\"\", pos=\"0,0!\"];\n")
	fmt.Fprintf(&buf, "  \"__tr\" [style=invis, label=\"\", pos=\"%.3f,%.3f!\"];\n", opts.Width, opts.Height)

	for _, n := range g.Nodes() {
		p, ok := fitted[n]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.3f,%.3f!\"];\n", n.String(), n.String(), p.X, p.Y)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		_, okFrom := fitted[e.From]
		_, okTo := fitted[e.To]
		if !okFrom || !okTo {
			continue
		}
		if opts.Labels {
			fmt.Fprintf(&buf, "  %q %s %q [label=%q];\n", e.From.String(), arrow, e.To.String(), FormatRSSI(e.RSSI))
		} else {
			fmt.Fprintf(&buf, "  %q %s %q;\n", e.From.String(), arrow, e.To.String())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FormatRSSI formats an RSSI edge label.
func FormatRSSI(rssi float64) string {
	return fmt.Sprintf("%.0f", rssi)
}

// RenderPNG renders DOT source to PNG bytes with the neato engine, which
// honors the pinned node positions.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage renders DOT source and decodes the result. The encoded PNG is
// returned alongside the image so callers can cache it.
func RenderImage(ctx context.Context, dot string) (image.Image, []byte, error) {
	data, err := RenderPNG(ctx, dot)
	if err != nil {
		return nil, nil, err
	}
	img, err := DecodePNG(data)
	if err != nil {
		return nil, nil, err
	}
	return img, data, nil
}

// DecodePNG decodes PNG bytes produced by [RenderPNG] or read from a cache.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode PNG: %w", err)
	}
	return img, nil
}
