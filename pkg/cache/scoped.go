package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several datasets or
// deployments can share one backend.
//
//	wb := NewScopedKeyer(NewDefaultKeyer(), "worldbank:2023:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner keyer
// means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) FontSettingsKey(opts FontKeyOpts) string {
	return k.prefix + k.inner.FontSettingsKey(opts)
}

func (k *ScopedKeyer) FrameKey(dataHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(dataHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(frameHash, opts)
}
