package cache

import "github.com/matzehuels/genetrack/pkg/genome"

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments or assemblies can share one Redis instance.
//
//	hg38 := cache.NewScopedKeyer(nil, "hg38:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FeaturesKey(source string, region genome.Region) (string, error) {
	return k.scope(k.inner.FeaturesKey(source, region))
}

func (k *ScopedKeyer) LayoutKey(featuresHash string, opts LayoutKeyOpts) (string, error) {
	return k.scope(k.inner.LayoutKey(featuresHash, opts))
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) (string, error) {
	return k.scope(k.inner.ArtifactKey(layoutHash, opts))
}

func (k *ScopedKeyer) scope(key string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return k.prefix + key, nil
}
