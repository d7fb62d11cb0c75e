package engine

import (
	"github.com/cpcf/measy/cache"
	"github.com/cpcf/measy/meta"
)

// caches are the memo caches shared by the components of one Engine.
type caches struct {
	sources  *cache.Cache[string, any]
	metadata *cache.Cache[string, *meta.Metadata]
	partials *cache.Cache[string, map[string]string]
}

func newCaches(opts ...cache.Option) *caches {
	return &caches{
		sources:  cache.New[string, any](opts...),
		metadata: cache.New[string, *meta.Metadata](opts...),
		partials: cache.New[string, map[string]string](opts...),
	}
}

func (c *caches) clear() {
	c.sources.Clear()
	c.metadata.Clear()
	c.partials.Clear()
}
