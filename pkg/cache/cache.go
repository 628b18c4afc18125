// Package cache stores rendered panel images between runs.
//
// Rendering a panel through Graphviz is the slowest step of a run, and in
// watch mode most CSV changes leave one of the two panels untouched. The
// runner keys each panel by the hash of its DOT source and reuses the PNG
// when the key is present.
//
// Two implementations are provided: [FileCache], which persists entries as
// JSON files under a directory, and [NullCache], which stores nothing and is
// used by --no-cache.
//
// Keys come from a [Keyer]:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "v1.2.0:")
//	key := k.PanelKey(dot, cache.PanelKeyOpts{Engine: "neato", Format: "png"})
package cache

import (
	"context"
	"time"
)

// PanelTTL is how long a rendered panel stays valid.
const PanelTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
