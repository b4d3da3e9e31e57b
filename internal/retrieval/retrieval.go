// Package retrieval answers "what stored context is relevant to this query,
// for this user, within this recency window". It holds no state of its own:
// every query is a pure transformation over a store snapshot.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	chromem "github.com/philippgille/chromem-go"

	"github.com/rcliao/habit-agent/internal/embedding"
	"github.com/rcliao/habit-agent/internal/model"
)

// Mode selects the retrieval strategy.
type Mode string

const (
	// ModeRecency returns the last k messages inside the window.
	ModeRecency Mode = "recency"
	// ModeSemantic returns the k nearest messages by embedding distance,
	// post-filtered to the window.
	ModeSemantic Mode = "semantic"
)

// Snapshotter is the slice of the store the engine reads from.
type Snapshotter interface {
	Snapshot(ctx context.Context, userID string) ([]model.Message, error)
}

// Engine retrieves conversational context. Results always come back in
// chronological order, the shape prompt assembly expects.
type Engine struct {
	store    Snapshotter
	embedder embedding.Embedder // required for ModeSemantic
	mode     Mode
	now      func() time.Time
}

// NewEngine creates a retrieval engine. A nil embedder forces recency mode.
func NewEngine(store Snapshotter, embedder embedding.Embedder, mode Mode) *Engine {
	if embedder == nil {
		mode = ModeRecency
	}
	if mode == "" {
		mode = ModeRecency
	}
	return &Engine{store: store, embedder: embedder, mode: mode, now: time.Now}
}

// Query returns up to k messages for the user relevant to text, restricted
// to the recency window (window <= 0 means unbounded). A user with no
// stored messages yields an empty result, never an error. Semantic failures
// degrade to recency with a logged warning.
func (e *Engine) Query(ctx context.Context, userID, text string, k int, window time.Duration) ([]model.Message, error) {
	if k <= 0 {
		k = 8
	}

	msgs, err := e.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if len(msgs) == 0 {
		return []model.Message{}, nil
	}

	if e.mode == ModeSemantic {
		out, err := e.semantic(ctx, userID, text, msgs, k, window)
		if err == nil {
			return out, nil
		}
		log.Warn("semantic retrieval failed, falling back to recency", "user", userID, "err", err)
	}

	return lastK(e.filterWindow(msgs, window), k), nil
}

// semantic embeds the query, retrieves the k nearest stored messages, then
// post-filters by the window. Equal distances break toward the newer
// message.
func (e *Engine) semantic(ctx context.Context, userID, text string, msgs []model.Message, k int, window time.Duration) ([]model.Message, error) {
	qvec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection("user_"+userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	byID := make(map[string]model.Message, len(msgs))
	for _, m := range msgs {
		vec, err := e.embedder.Embed(ctx, m.Content)
		if err != nil {
			return nil, fmt.Errorf("embed message: %w", err)
		}
		if err := col.AddDocument(ctx, chromem.Document{
			ID:        m.ID,
			Content:   m.Content,
			Embedding: vec,
		}); err != nil {
			return nil, fmt.Errorf("index message: %w", err)
		}
		byID[m.ID] = m
	}

	// Rank the full snapshot, then cut to k after the tie-break: truncating
	// first would let the index resolve an exact-similarity tie at the cut
	// boundary instead of recency.
	results, err := col.QueryEmbedding(ctx, qvec, len(msgs), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity == results[j].Similarity {
			return byID[results[i].ID].Timestamp.After(byID[results[j].ID].Timestamp)
		}
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}

	picked := make([]model.Message, 0, len(results))
	for _, r := range results {
		picked = append(picked, byID[r.ID])
	}
	picked = e.filterWindow(picked, window)

	sort.Slice(picked, func(i, j int) bool {
		if picked[i].Timestamp.Equal(picked[j].Timestamp) {
			return picked[i].ID < picked[j].ID
		}
		return picked[i].Timestamp.Before(picked[j].Timestamp)
	})
	return picked, nil
}

func (e *Engine) filterWindow(msgs []model.Message, window time.Duration) []model.Message {
	if window <= 0 {
		return msgs
	}
	cutoff := e.now().UTC().Add(-window)
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.Timestamp.Before(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

func lastK(msgs []model.Message, k int) []model.Message {
	if len(msgs) <= k {
		return msgs
	}
	return msgs[len(msgs)-k:]
}
