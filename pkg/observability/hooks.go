// Package observability provides hooks for logging, metrics and tracing.
//
// Libraries emit events through the registered hooks without depending on
// any backend. The defaults are no-ops; the CLI registers [LogHooks] so
// stage timings and cache activity show up in verbose output.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    observability.SetCacheHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageLoad)
//	// ... load the CSV ...
//	observability.Pipeline().OnStageComplete(ctx, observability.StageLoad, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names a pipeline step.
type Stage string

// Pipeline stages, in execution order.
const (
	StageLoad     Stage = "load"
	StageReduce   Stage = "reduce"
	StageAssemble Stage = "assemble"
	StageLayout   Stage = "layout"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
)

// PipelineHooks receives run and stage events from the pipeline runner.
// Stage events arrive in the order of the Stage constants; a failed stage
// is the last one reported for its run.
type PipelineHooks interface {
	OnRunStart(ctx context.Context, runID, input string)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)
	OnStageStart(ctx context.Context, stage Stage)
	OnStageComplete(ctx context.Context, stage Stage, duration time.Duration, err error)
}

// CacheHooks receives panel cache lookups and writes. keyType names the
// kind of entry, currently always "panel".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, string)                   {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, time.Duration, error)  {}
func (NoopPipelineHooks) OnStageStart(context.Context, Stage)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, Stage, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// registry holds the process-wide hooks.
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
}

var hooks = registry{pipeline: NoopPipelineHooks{}, cache: NoopCacheHooks{}}

// SetPipelineHooks installs h for all later pipeline runs. A nil h is
// ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.pipeline = h
	hooks.mu.Unlock()
}

// SetCacheHooks installs h for all later cache operations. A nil h is
// ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.cache = h
	hooks.mu.Unlock()
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.pipeline
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// Reset reinstalls the no-op hooks. Tests use it to undo registrations.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.pipeline = NoopPipelineHooks{}
	hooks.cache = NoopCacheHooks{}
}
