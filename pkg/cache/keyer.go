package cache

// PanelKeyOpts are the render settings that change a panel's pixels
// without changing its DOT source.
type PanelKeyOpts struct {
	Engine string `json:"engine"`
	Format string `json:"format"`
}

// Keyer builds cache keys.
type Keyer interface {
	PanelKey(dot string, opts PanelKeyOpts) string
}

// DefaultKeyer hashes the DOT source together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PanelKey returns "panel:<sha256>" over the DOT hash and opts.
func (DefaultKeyer) PanelKey(dot string, opts PanelKeyOpts) string {
	return hashKey("panel", Hash([]byte(dot)), opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so entries written by
// one build never satisfy lookups from another.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer falls back to [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PanelKey generates a prefixed panel key.
func (k *ScopedKeyer) PanelKey(dot string, opts PanelKeyOpts) string {
	return k.prefix + k.inner.PanelKey(dot, opts)
}
