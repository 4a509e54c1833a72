package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each deployment
// or tenant its own namespace in a shared backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "site:rotterdam:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SectionKey generates a prefixed section key.
func (k *ScopedKeyer) SectionKey(inputHash string, opts SectionKeyOpts) string {
	return k.prefix + k.inner.SectionKey(inputHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sectionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sectionHash, opts)
}
