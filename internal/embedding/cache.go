package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// CachedEmbedder memoizes embeddings by input text. The retrieval index is
// rebuilt from a store snapshot on every semantic query, so without a cache
// every query would re-embed the full unchanged history.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

// NewCachedEmbedder wraps an embedder with an in-process cache.
func NewCachedEmbedder(inner Embedder) (*CachedEmbedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     64 << 20, // 64 MiB of vectors
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.(Vector), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, int64(len(vec)*4))
	return vec, nil
}

func (c *CachedEmbedder) Dims() int { return c.inner.Dims() }

// Wait blocks until pending cache writes are applied. Tests use it.
func (c *CachedEmbedder) Wait() { c.cache.Wait() }
