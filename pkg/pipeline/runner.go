package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topomap/pkg/cache"
	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/layout"
	"github.com/matzehuels/topomap/pkg/observability"
	"github.com/matzehuels/topomap/pkg/record"
	"github.com/matzehuels/topomap/pkg/reduce"
	"github.com/matzehuels/topomap/pkg/render/figure"
	"github.com/matzehuels/topomap/pkg/render/nodelink"
	"github.com/matzehuels/topomap/pkg/topology"
)

const panelKeyType = "panel"

var panelKeyOpts = cache.PanelKeyOpts{Engine: "neato", Format: "png"}

// Runner encapsulates pipeline execution with panel caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → reduce → assemble → layout → render → write.
// Nothing is written unless every earlier stage succeeds.
func (r *Runner) Execute(ctx context.Context, opts Options) (res *Result, err error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	res = &Result{RunID: runID, Timestamp: opts.Now()}
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, runID, opts.Input)
	start := time.Now()
	defer func() { hooks.OnRunComplete(ctx, runID, time.Since(start), err) }()

	logger := opts.Logger.With("run", runID[:8])
	logger.Debug("options", "opts", opts.String())

	// Stage 1: Load
	res.Stats.LoadTime, err = r.stage(ctx, observability.StageLoad, func() error {
		res.Dataset, err = r.Load(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Stats.Records = res.Dataset.Len()
	res.Stats.Skipped = len(res.Dataset.Skipped)

	// Stage 2: Reduce
	res.Stats.ReduceTime, err = r.stage(ctx, observability.StageReduce, func() error {
		res.Reduced = r.Reduce(ctx, res.Dataset)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Stats.Parents = len(res.Reduced.Parents)
	res.Stats.Neighbors = len(res.Reduced.Neighbors)
	logger.Info("reduced records",
		"records", res.Stats.Records,
		"parents", res.Stats.Parents,
		"candidates", len(res.Reduced.Candidates),
		"links", res.Stats.Neighbors)

	// Stage 3: Assemble
	if _, err = r.stage(ctx, observability.StageAssemble, func() error {
		res.Graphs = r.Assemble(ctx, res.Reduced, opts)
		return nil
	}); err != nil {
		return nil, err
	}
	res.Stats.TreeNodes = res.Graphs.Tree.NodeCount()
	res.Stats.TreeEdges = res.Graphs.Tree.EdgeCount()
	res.Stats.AdjacencyNodes = res.Graphs.Adjacency.NodeCount()
	res.Stats.AdjacencyEdges = res.Graphs.Adjacency.EdgeCount()

	// Stage 4: Layout
	res.Stats.LayoutTime, err = r.stage(ctx, observability.StageLayout, func() error {
		res.Layouts = r.Layout(ctx, res.Graphs, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if unplaced := res.Stats.TreeNodes - countPlaced(res.Graphs.Tree, res.Layouts.Tree); unplaced > 0 {
		logger.Warn("tree nodes without position", "count", unplaced)
	}

	// Stage 5: Render
	res.TreeDOT = nodelink.ToDOT(res.Graphs.Tree, res.Layouts.Tree, nodelink.TreeOptions())
	res.AdjacencyDOT = nodelink.ToDOT(res.Graphs.Adjacency, res.Layouts.Adjacency, nodelink.AdjacencyOptions())
	res.Stats.RenderTime, err = r.stage(ctx, observability.StageRender, func() error {
		res.Figure, res.CacheInfo, err = r.Render(ctx, res.TreeDOT, res.AdjacencyDOT, res.Timestamp, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("rendered figure",
		"tree", res.Stats.TreeNodes,
		"adjacency", res.Stats.AdjacencyNodes,
		"tree_cached", res.CacheInfo.TreeHit,
		"adjacency_cached", res.CacheInfo.AdjacencyHit,
		"duration", res.Stats.RenderTime)

	// Stage 6: Write
	res.Stats.WriteTime, err = r.stage(ctx, observability.StageWrite, func() error {
		res.Paths, err = r.Write(ctx, res.Figure, res.Timestamp, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// stage checks for cancellation, then runs fn between hook events.
func (r *Runner) stage(ctx context.Context, s observability.Stage, fn func() error) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, s)
	start := time.Now()
	err := runStage(s, fn)
	d := time.Since(start)
	hooks.OnStageComplete(ctx, s, d, err)
	return d, err
}

// runStage calls fn, turning a panic into an internal error so a bug in one
// stage cannot take down a watch loop.
func runStage(s observability.Stage, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = tmerrors.New(tmerrors.ErrCodeInternal, "%s stage panicked: %v", s, p)
		}
	}()
	return fn()
}

// Load reads the input CSV. Skipped rows are logged one warning each; an
// empty log is reported but is not an error.
func (r *Runner) Load(ctx context.Context, opts Options) (*record.Dataset, error) {
	r.applyLogger(&opts)
	ds, err := record.ImportCSV(opts.Input, opts.ReadOptions())
	if err != nil {
		return nil, err
	}
	for _, skip := range ds.Skipped {
		opts.Logger.Warn("skipped row", "line", skip.Line, "column", skip.Column, "value", skip.Value, "err", skip.Err)
	}
	if ds.Empty() {
		empty := tmerrors.New(tmerrors.ErrCodeEmptyInput, "no records in %s", opts.Input)
		opts.Logger.Warn(tmerrors.UserMessage(empty), "code", tmerrors.ErrCodeEmptyInput)
	}
	return ds, nil
}

// Reduce derives the newest parent, link and candidate sets.
func (r *Runner) Reduce(ctx context.Context, ds *record.Dataset) reduce.Result {
	if ds == nil {
		return reduce.Reduce(nil)
	}
	return reduce.Reduce(ds.Records)
}

// Assemble builds the routing tree and adjacency graph. Both use the same
// parent edges: role-based, plus fallback candidates when enabled.
func (r *Runner) Assemble(ctx context.Context, red reduce.Result, opts Options) Graphs {
	parents := red.TreeEdges(opts.Fallback)
	return Graphs{
		Parents:   topology.ParentGraph(parents),
		Tree:      topology.BuildTree(opts.SinkAddr(), parents),
		Adjacency: topology.BuildAdjacency(reduce.NeighborEdges(red.Neighbors), parents),
	}
}

// Layout positions the tree from the sink and the adjacency graph on a circle.
func (r *Runner) Layout(ctx context.Context, g Graphs, opts Options) Layouts {
	return Layouts{
		Tree:      layout.Tree(opts.SinkAddr(), g.Parents, opts.LayoutOptions()),
		Adjacency: layout.Circular(g.Adjacency.Nodes()),
	}
}

// Render draws both panels and composes the figure for a run at ts.
func (r *Runner) Render(ctx context.Context, treeDOT, adjDOT string, ts time.Time, opts Options) ([]byte, CacheInfo, error) {
	r.applyLogger(&opts)
	var info CacheInfo

	treeImg, hit, err := r.renderPanel(ctx, treeDOT)
	if err != nil {
		return nil, info, tmerrors.Wrap(tmerrors.ErrCodeRender, err, "render tree panel")
	}
	info.TreeHit = hit

	adjImg, hit, err := r.renderPanel(ctx, adjDOT)
	if err != nil {
		return nil, info, tmerrors.Wrap(tmerrors.ErrCodeRender, err, "render adjacency panel")
	}
	info.AdjacencyHit = hit

	figOpts := figure.DefaultOptions(ts)
	figOpts.Width, figOpts.Height = opts.Width, opts.Height
	data, err := figure.Compose(
		figure.Panel{Title: figure.TreeTitle, Image: treeImg},
		figure.Panel{Title: figure.AdjacencyTitle, Image: adjImg},
		figOpts,
	)
	if err != nil {
		return nil, info, tmerrors.Wrap(tmerrors.ErrCodeRender, err, "compose figure")
	}
	return data, info, nil
}

// renderPanel returns the panel image for dot, from the cache when possible.
// Cache failures are logged and never fail the render.
func (r *Runner) renderPanel(ctx context.Context, dot string) (image.Image, bool, error) {
	hooks := observability.Cache()
	key := r.Keyer.PanelKey(dot, panelKeyOpts)

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
	}
	if hit {
		if img, err := nodelink.DecodePNG(data); err == nil {
			hooks.OnCacheHit(ctx, panelKeyType)
			return img, true, nil
		}
		_ = r.Cache.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, panelKeyType)

	img, data, err := nodelink.RenderImage(ctx, dot)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.PanelTTL); err != nil {
		r.Logger.Debug("cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, panelKeyType, len(data))
	}
	return img, false, nil
}

// Write stores the figure as the archive file and the latest file, creating
// the output directory if needed. It returns both paths, archive first.
func (r *Runner) Write(ctx context.Context, data []byte, ts time.Time, opts Options) ([]string, error) {
	opts.SetDefaults()
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "create output directory %s", opts.OutputDir)
	}
	paths := []string{
		filepath.Join(opts.OutputDir, opts.ArchiveName(ts)),
		filepath.Join(opts.OutputDir, opts.LatestName),
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeFileAtomic(p, data); err != nil {
			return nil, tmerrors.Wrap(tmerrors.ErrCodeIO, err, "write %s", p)
		}
	}
	return paths, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func countPlaced(g *topology.Graph, pos layout.Positions) int {
	n := 0
	for _, a := range g.Nodes() {
		if _, ok := pos[a]; ok {
			n++
		}
	}
	return n
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
