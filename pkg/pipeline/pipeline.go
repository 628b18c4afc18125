// Package pipeline runs the topology map pipeline end to end.
//
// # Architecture
//
// A run has six stages:
//
//  1. Load: read the discovery CSV into observations
//  2. Reduce: keep the newest parent per node and the newest link per pair
//  3. Assemble: build the routing tree and the adjacency graph
//  4. Layout: position the tree from the sink and the adjacency on a circle
//  5. Render: draw both panels through Graphviz and compose the figure
//  6. Write: store the figure under a timestamped name and a fixed name
//
// Each stage is a [Runner] method and can be called on its own. Rendered
// panels are cached by the hash of their DOT source, so a run whose graph
// did not change skips Graphviz.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Input = "results/network.csv"
//	opts.Sink = 1
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Paths)
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/record"
	"github.com/matzehuels/topomap/pkg/reduce"
	"github.com/matzehuels/topomap/pkg/render/figure"
	"github.com/matzehuels/topomap/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Config
// =============================================================================

const (
	// DefaultInput is the discovery log path relative to the working directory.
	DefaultInput = "results/network.csv"

	// DefaultOutputDir is where figures are written.
	DefaultOutputDir = "results"

	// DefaultMode is the vertical step policy of the tree layout.
	DefaultMode = string(layout.ModeFixed)

	// DefaultArchivePattern names the per-run figure; {timestamp} is replaced
	// by the run time in TimestampFormat.
	DefaultArchivePattern = "network_graph_{timestamp}.png"

	// DefaultLatestName names the figure overwritten on every run.
	DefaultLatestName = "network_graph.png"

	// TimestampFormat is the file-name form of the run time. It avoids ':'
	// so names stay valid on every filesystem.
	TimestampFormat = "2006-01-02_15-04-05"

	timestampPlaceholder = "{timestamp}"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input options
	Input  string `json:"input"`
	Strict bool   `json:"strict,omitempty"` // fail on the first bad row instead of skipping it

	// Tree options
	Sink      int     `json:"sink"`
	Fallback  bool    `json:"fallback"` // fill missing parents from the newest row per address
	Mode      string  `json:"mode,omitempty"`
	Spacing   float64 `json:"spacing,omitempty"`
	Step      float64 `json:"step,omitempty"`
	RSSIScale float64 `json:"rssi_scale,omitempty"`

	// Output options
	OutputDir      string `json:"output_dir,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	ArchivePattern string `json:"archive_pattern,omitempty"`
	LatestName     string `json:"latest_name,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`
}

// DefaultOptions returns options with every default applied and fallback
// enabled. Sink is left at 0 and must be set by the caller.
func DefaultOptions() Options {
	o := Options{Fallback: true}
	o.SetDefaults()
	return o
}

// SetDefaults fills zero-valued fields. Fallback is left alone because its
// zero value is a valid choice.
func (o *Options) SetDefaults() {
	if o.Input == "" {
		o.Input = DefaultInput
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Spacing == 0 {
		o.Spacing = layout.DefaultSpacing
	}
	if o.Step == 0 {
		o.Step = layout.DefaultStep
	}
	if o.RSSIScale == 0 {
		o.RSSIScale = layout.DefaultRSSIScale
	}
	if o.Width == 0 {
		o.Width = figure.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = figure.DefaultHeight
	}
	if o.ArchivePattern == "" {
		o.ArchivePattern = DefaultArchivePattern
	}
	if o.LatestName == "" {
		o.LatestName = DefaultLatestName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Validate checks the options after defaults are applied.
func (o *Options) Validate() error {
	if o.Sink <= 0 {
		return tmerrors.New(tmerrors.ErrCodeInvalidInput, "sink must be a positive address, got %d", o.Sink)
	}
	if err := o.LayoutOptions().Validate(); err != nil {
		return tmerrors.Wrap(tmerrors.ErrCodeInvalidInput, err, "layout")
	}
	if o.Width < 200 || o.Height < 200 {
		return tmerrors.New(tmerrors.ErrCodeInvalidInput, "figure size %dx%d is below 200x200", o.Width, o.Height)
	}
	if !strings.Contains(o.ArchivePattern, timestampPlaceholder) {
		return tmerrors.New(tmerrors.ErrCodeInvalidInput, "archive pattern %q must contain %s", o.ArchivePattern, timestampPlaceholder)
	}
	for _, name := range []string{o.ArchivePattern, o.LatestName} {
		if filepath.Base(name) != name {
			return tmerrors.New(tmerrors.ErrCodeInvalidInput, "output name %q must not contain a directory", name)
		}
	}
	if o.ArchiveName(time.Time{}) == o.LatestName {
		return tmerrors.New(tmerrors.ErrCodeInvalidInput, "archive and latest names collide")
	}
	return nil
}

// LayoutOptions returns the tree layout settings for Mode.
func (o *Options) LayoutOptions() layout.Options {
	step := layout.Step{Mode: layout.Mode(o.Mode), Value: o.Step}
	if step.Mode == layout.ModeRSSI {
		step.Value = o.RSSIScale
	}
	return layout.Options{Spacing: o.Spacing, Step: step}
}

// ReadOptions returns the CSV loader settings.
func (o *Options) ReadOptions() record.ReadOptions {
	return record.ReadOptions{Strict: o.Strict}
}

// ArchiveName returns the timestamped file name for a run at ts.
func (o *Options) ArchiveName(ts time.Time) string {
	return strings.ReplaceAll(o.ArchivePattern, timestampPlaceholder, ts.Format(TimestampFormat))
}

// SinkAddr returns the sink as a topology address.
func (o *Options) SinkAddr() topology.Addr { return topology.Addr(o.Sink) }

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("input=%s sink=%d mode=%s spacing=%g fallback=%t out=%s",
		o.Input, o.Sink, o.Mode, o.Spacing, o.Fallback, o.OutputDir)
}

// =============================================================================
// Results
// =============================================================================

// Graphs are the assembled views of a reduced dataset.
type Graphs struct {
	// Parents holds every tree edge, unpruned. The tree layout walks it so
	// the sentinel node's subtree is still positioned.
	Parents   *topology.Graph
	Tree      *topology.Graph
	Adjacency *topology.Graph
}

// Layouts are the positions of both panels.
type Layouts struct {
	Tree      layout.Positions
	Adjacency layout.Positions
}

// Result contains the outputs of a pipeline run.
type Result struct {
	RunID     string
	Timestamp time.Time

	Dataset *record.Dataset
	Reduced reduce.Result
	Graphs  Graphs
	Layouts Layouts

	TreeDOT      string
	AdjacencyDOT string
	Figure       []byte

	// Paths are the written files: archive first, then latest.
	Paths []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records        int
	Skipped        int
	Parents        int
	Neighbors      int
	TreeNodes      int
	TreeEdges      int
	AdjacencyNodes int
	AdjacencyEdges int

	LoadTime   time.Duration
	ReduceTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
	WriteTime  time.Duration
}

// CacheInfo tracks which panels came from the cache.
type CacheInfo struct {
	TreeHit      bool
	AdjacencyHit bool
}
