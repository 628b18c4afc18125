package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/topomap/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, "  "+styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary prints the outcome of a pipeline run: the written files,
// graph sizes and whether the panels came from the cache.
func printSummary(w io.Writer, res *pipeline.Result) {
	for _, p := range res.Paths {
		printFile(w, p)
	}

	s := res.Stats
	printKeyValue(w, "records", recordsLine(s))
	printKeyValue(w, "tree", graphLine(s.TreeNodes, s.TreeEdges, res.CacheInfo.TreeHit))
	printKeyValue(w, "adjacency", graphLine(s.AdjacencyNodes, s.AdjacencyEdges, res.CacheInfo.AdjacencyHit))
	printKeyValue(w, "elapsed", (s.LoadTime + s.ReduceTime + s.LayoutTime + s.RenderTime + s.WriteTime).Round(time.Millisecond).String())

	if s.Skipped > 0 {
		printWarning(w, "%d malformed row(s) skipped; rerun with -v for details", s.Skipped)
	}
	if s.Records == 0 {
		printWarning(w, "discovery log is empty; only the sink was drawn")
	}
}

func recordsLine(s pipeline.Stats) string {
	return joinDim(
		fmt.Sprintf("%d rows", s.Records),
		fmt.Sprintf("%d parents", s.Parents),
		fmt.Sprintf("%d links", s.Neighbors),
	)
}

// graphLine formats node and edge counts on a single line.
func graphLine(nodes, edges int, cached bool) string {
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	return joinDim(fmt.Sprintf("%d nodes", nodes), fmt.Sprintf("%d edges", edges), status)
}

func joinDim(parts ...string) string {
	return strings.Join(parts, StyleDim.Render(" · "))
}
