package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis database:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "taskgraph:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphHash is not prefixed; it is an input to LayoutKey.
func (k *ScopedKeyer) GraphHash(nodeIDs []string, edges []GraphEdge) string {
	return k.inner.GraphHash(nodeIDs, edges)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
