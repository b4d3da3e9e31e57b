package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// LocalEmbedder produces deterministic hash-derived unit vectors. It carries
// no semantic signal, but it needs no model server and gives identical
// vectors for identical input, which keeps retrieval reproducible offline
// and in tests. It is the default provider.
type LocalEmbedder struct {
	dims int
}

// NewLocalEmbedder creates a local embedder. Zero dims defaults to 384.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &LocalEmbedder{dims: dims}
}

func (e *LocalEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make(Vector, e.dims)
	for i := range vec {
		// LCG seeded by the text hash
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

func (e *LocalEmbedder) Dims() int { return e.dims }

func normalize(vec Vector) Vector {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	n := float32(math.Sqrt(norm))
	out := make(Vector, len(vec))
	for i, v := range vec {
		out[i] = v / n
	}
	return out
}
