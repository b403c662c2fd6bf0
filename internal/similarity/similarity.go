// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity computes the pairwise "related" relation between
// normalized articles from embedding vectors.
//
// The comparison is O(N²) over the batch. Batches are bounded by the
// acquisition fan-out (tens of articles), so no approximate
// nearest-neighbor structure is used; that is an explicit scalability
// limit of this package.
package similarity

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/pkg/types"
)

// DefaultThreshold is the cosine-similarity cutoff above which two
// articles are considered related.
const DefaultThreshold = 0.75

// Engine marks articles as related when their embedding similarity clears
// a threshold.
type Engine struct {
	embedder  inference.Embedder
	threshold float64
	log       io.Writer
}

// NewEngine builds a similarity engine. A zero or negative threshold uses
// DefaultThreshold.
func NewEngine(embedder inference.Embedder, threshold float64, log io.Writer) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if log == nil {
		log = io.Discard
	}
	return &Engine{embedder: embedder, threshold: threshold, log: log}
}

// Relate embeds every article's title and summary in one batched call and
// populates RelatedStories on each item with the ids of all other items
// whose similarity meets the threshold. The relation it produces is
// symmetric up to floating-point rounding at the threshold boundary.
//
// On embedding failure every item gets an empty relation and the error is
// logged, not returned: a missing relation degrades clustering, it never
// aborts a batch.
func (e *Engine) Relate(ctx context.Context, items []types.NormalizedArticle) {
	if len(items) < 2 {
		return
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Title + "\n" + item.Summary
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil || len(vectors) != len(items) {
		fmt.Fprintf(e.log, "error identifying related stories: %v\n", err)
		for i := range items {
			items[i].RelatedStories = []string{}
		}
		return
	}

	for i := range items {
		related := []string{}
		for j := range items {
			if i == j {
				continue
			}
			if Similarity(vectors[i], vectors[j]) >= e.threshold {
				related = append(related, items[j].ID)
			}
		}
		items[i].RelatedStories = related
	}
}

// Similarity returns 1 − cosine distance between two vectors. Mismatched
// or zero-magnitude vectors yield 0.
func Similarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
