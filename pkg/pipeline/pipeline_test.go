package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/topomap/pkg/cache"
	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/observability"
	"github.com/matzehuels/topomap/pkg/topology"
)

const sampleCSV = `Timestamp,Source,Address,Parent,Role,RSSI,ParentRSSI
2024-03-01 10:00:01,2,1,1,PARENT,-40,-40
2024-03-01 10:00:02,3,2,2,PARENT,-55,-55
2024-03-01 10:00:03,3,1,2,NEIGHBOUR,-71,-55
2024-03-01 10:00:04,4,0,0,PARENT,-60,0
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions(t *testing.T, input string) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.Input = input
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	opts.Sink = 1
	opts.Now = func() time.Time { return time.Date(2024, 3, 1, 10, 5, 0, 0, time.Local) }
	return opts
}

func TestOptionsDefaults(t *testing.T) {
	opts := DefaultOptions()

	if opts.Input != DefaultInput {
		t.Errorf("Input = %q, want %q", opts.Input, DefaultInput)
	}
	if !opts.Fallback {
		t.Error("Fallback should default to true")
	}
	if opts.Spacing != layout.DefaultSpacing || opts.Step != layout.DefaultStep {
		t.Errorf("Spacing/Step = %v/%v", opts.Spacing, opts.Step)
	}
	if opts.Width != 1600 || opts.Height != 800 {
		t.Errorf("size = %dx%d, want 1600x800", opts.Width, opts.Height)
	}

	var zero Options
	zero.SetDefaults()
	if zero.Fallback {
		t.Error("SetDefaults must not change Fallback")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		ok     bool
	}{
		{"valid", func(o *Options) {}, true},
		{"rssi mode", func(o *Options) { o.Mode = "rssi" }, true},
		{"zero sink", func(o *Options) { o.Sink = 0 }, false},
		{"negative sink", func(o *Options) { o.Sink = -3 }, false},
		{"bad mode", func(o *Options) { o.Mode = "zigzag" }, false},
		{"negative spacing", func(o *Options) { o.Spacing = -1 }, false},
		{"tiny figure", func(o *Options) { o.Width = 10 }, false},
		{"no placeholder", func(o *Options) { o.ArchivePattern = "graph.png" }, false},
		{"directory in name", func(o *Options) { o.LatestName = "x/graph.png" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Sink = 1
			tt.modify(&opts)
			err := opts.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !tmerrors.Is(err, tmerrors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLayoutOptions(t *testing.T) {
	opts := DefaultOptions()
	if got := opts.LayoutOptions().Step; got != layout.Fixed(1) {
		t.Errorf("fixed step = %+v", got)
	}
	opts.Mode = "rssi"
	opts.RSSIScale = 0.2
	if got := opts.LayoutOptions().Step; got != layout.RSSIWeighted(0.2) {
		t.Errorf("rssi step = %+v", got)
	}
}

func TestArchiveName(t *testing.T) {
	opts := DefaultOptions()
	ts := time.Date(2024, 3, 1, 9, 4, 5, 0, time.UTC)
	if got, want := opts.ArchiveName(ts), "network_graph_2024-03-01_09-04-05.png"; got != want {
		t.Errorf("ArchiveName() = %q, want %q", got, want)
	}
}

func TestRunnerAssembleAndLayout(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	opts := testOptions(t, writeCSV(t, sampleCSV))

	ds, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	g := r.Assemble(ctx, r.Reduce(ctx, ds), opts)
	l := r.Layout(ctx, g, opts)

	if g.Tree.HasNode(topology.Sentinel) || g.Adjacency.HasNode(topology.Sentinel) {
		t.Error("sentinel node present in output graphs")
	}
	want := layout.Positions{1: {0, 0}, 2: {0, -1}, 3: {0, -2}}
	for n, p := range want {
		if l.Tree[n] != p {
			t.Errorf("tree pos[%d] = %v, want %v", n, l.Tree[n], p)
		}
	}
	if e, ok := g.Adjacency.Edge(1, 3); !ok || e.RSSI != -71 {
		t.Errorf("adjacency edge 1-3 = %+v, %v", e, ok)
	}
}

func TestExecute(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in -short mode")
	}
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := testOptions(t, writeCSV(t, sampleCSV))

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(res.Paths) != 2 {
		t.Fatalf("Paths = %v", res.Paths)
	}
	if got := filepath.Base(res.Paths[0]); got != "network_graph_2024-03-01_10-05-00.png" {
		t.Errorf("archive name = %q", got)
	}
	if got := filepath.Base(res.Paths[1]); got != DefaultLatestName {
		t.Errorf("latest name = %q", got)
	}
	archive, _ := os.ReadFile(res.Paths[0])
	latest, _ := os.ReadFile(res.Paths[1])
	if len(archive) == 0 || !bytes.Equal(archive, latest) {
		t.Error("archive and latest should hold identical non-empty bytes")
	}
	img, err := png.Decode(bytes.NewReader(latest))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 800 {
		t.Errorf("figure size = %v", b)
	}
	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.CacheInfo.TreeHit || res.CacheInfo.AdjacencyHit {
		t.Error("first run should miss the cache")
	}
	if strings.Contains(res.TreeDOT, `"0"`) || strings.Contains(res.AdjacencyDOT, `"0"`) {
		t.Error("sentinel node rendered")
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.TreeHit || !again.CacheInfo.AdjacencyHit {
		t.Errorf("second run CacheInfo = %+v, want both hits", again.CacheInfo)
	}
}

func TestExecute_EmptyInput(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in -short mode")
	}
	r := NewRunner(nil, nil, nil)
	opts := testOptions(t, writeCSV(t, ""))

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := res.Graphs.Tree.Nodes(); len(got) != 1 || got[0] != 1 {
		t.Errorf("tree nodes = %v, want [1]", got)
	}
	if res.Graphs.Adjacency.NodeCount() > 1 {
		t.Errorf("adjacency nodes = %v", res.Graphs.Adjacency.Nodes())
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		path string
		code tmerrors.Code
	}{
		{"missing file", "", "does-not-exist.csv", tmerrors.ErrCodeIO},
		{"missing column", "Timestamp,Source,Address\n2024-03-01 10:00:00,1,2\n", "", tmerrors.ErrCodeSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeCSV(t, tt.csv)
			if tt.path != "" {
				input = filepath.Join(t.TempDir(), tt.path)
			}
			opts := testOptions(t, input)

			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
			if !tmerrors.Is(err, tt.code) {
				t.Fatalf("Execute() error = %v, want %s", err, tt.code)
			}
			if _, statErr := os.Stat(opts.OutputDir); !os.IsNotExist(statErr) {
				t.Error("output directory created despite failure")
			}
		})
	}
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, testOptions(t, writeCSV(t, sampleCSV)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestStage_RecoversPanic(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.stage(context.Background(), observability.StageLayout, func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	if !tmerrors.Is(err, tmerrors.ErrCodeInternal) {
		t.Fatalf("stage() error = %v, want INTERNAL_ERROR", err)
	}
	if !strings.Contains(err.Error(), "layout") {
		t.Errorf("error %q should name the stage", err)
	}

	sentinel := errors.New("boom")
	if _, err := r.stage(context.Background(), observability.StageLayout, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("stage() error = %v, want the stage error unchanged", err)
	}
}

func TestLayout_NonFiniteSignalRowIgnored(t *testing.T) {
	csv := sampleCSV + "2024-03-01 10:00:05,5,2,2,PARENT,NaN,NaN\n"
	r := NewRunner(nil, nil, nil)
	opts := testOptions(t, writeCSV(t, csv))
	opts.Mode = string(layout.ModeRSSI)

	ds, err := r.Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(ds.Skipped) != 1 {
		t.Fatalf("Skipped = %d, want 1", len(ds.Skipped))
	}
	g := r.Assemble(context.Background(), r.Reduce(context.Background(), ds), opts)
	lay := r.Layout(context.Background(), g, opts)
	for a, p := range lay.Tree {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("node %d at non-finite position %+v", a, p)
		}
	}
	if g.Tree.HasNode(5) {
		t.Error("node from the rejected row reached the tree")
	}
}

func TestWrite(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "nested", "out")
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	paths, err := NewRunner(nil, nil, nil).Write(context.Background(), []byte("png"), ts, opts)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil || string(data) != "png" {
			t.Errorf("%s = %q, %v", p, data, err)
		}
	}
	entries, _ := os.ReadDir(opts.OutputDir)
	if len(entries) != 2 {
		t.Errorf("output dir has %d entries, want 2 (no temp files)", len(entries))
	}
}
