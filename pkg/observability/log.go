package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports pipeline and cache events to a logger at debug level.
// Failures are debug output too; the caller reports the returned error.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnRunStart(_ context.Context, runID, input string) {
	h.logger.Debug("run started", "run", runID, "input", input)
}

func (h *LogHooks) OnRunComplete(_ context.Context, runID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "run", runID, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("run finished", "run", runID, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnStageStart(_ context.Context, stage Stage) {
	h.logger.Debug("stage started", "stage", stage)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage Stage, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("stage failed", "stage", stage, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("stage finished", "stage", stage, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
