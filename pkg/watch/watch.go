// Package watch re-runs work whenever a single file changes.
//
// Editors and loggers rarely write a file in one event: a save can be a
// truncate, several writes and a rename. The [Watcher] therefore watches
// the file's directory (so a replaced file is still seen), filters events
// for the file's name and collapses bursts into one call after a quiet
// period.
//
//	w, err := watch.New("results/network.csv", func(ctx context.Context) error {
//	    _, err := runner.Execute(ctx, opts)
//	    return err
//	}, watch.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	return w.Run(ctx)
package watch

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// handler runs.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Handler is invoked after a debounced change. Calls never overlap.
type Handler func(ctx context.Context) error

// Options configures a [Watcher].
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher calls a handler when one file changes.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	logger   *log.Logger

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// New creates a watcher for path. The file itself need not exist yet, but
// its directory must.
func New(path string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		handler:  handler,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		fsw:      fsw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run dispatches debounced changes to the handler until ctx is cancelled,
// returning ctx.Err(). Handler errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if !w.matches(ev) {
				continue
			}
			w.logger.Debug("file event", "op", ev.Op.String(), "path", ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("watch error", "err", err)

		case <-timerC:
			timerC = nil
			if err := w.handler(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("run failed", "err", err)
			}
		}
	}
}

// matches reports whether ev changes the watched file's content.
func (w *Watcher) matches(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsw.Close() })
	return err
}
