// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/pdiddy/news-engine/pkg/types"
)

// fakeEmbedder maps each text to a fixed vector keyed by input order.
type fakeEmbedder struct {
	vectors [][]float64
	err     error
	calls   int
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[:len(texts)], nil
}

func normArticle(id string) types.NormalizedArticle {
	return types.NormalizedArticle{
		Article: types.Article{ID: id, Title: "t-" + id},
		Summary: "s-" + id,
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"scaled", []float64{1, 1}, []float64{3, 3}, 1},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelateThreshold(t *testing.T) {
	// Items 0 and 1 point the same way; item 2 is orthogonal.
	emb := &fakeEmbedder{vectors: [][]float64{
		{1, 0.02},
		{1, 0},
		{0, 1},
	}}
	engine := NewEngine(emb, 0.9, io.Discard)

	items := []types.NormalizedArticle{normArticle("a"), normArticle("b"), normArticle("c")}
	engine.Relate(context.Background(), items)

	if emb.calls != 1 {
		t.Errorf("embed calls = %d, want 1 batched call", emb.calls)
	}
	assertRelated(t, items[0], "b")
	assertRelated(t, items[1], "a")
	assertRelated(t, items[2])
}

func TestRelateSymmetric(t *testing.T) {
	emb := &fakeEmbedder{vectors: [][]float64{
		{1, 0},
		{0.9, 0.1},
	}}
	engine := NewEngine(emb, DefaultThreshold, io.Discard)

	items := []types.NormalizedArticle{normArticle("a"), normArticle("b")}
	engine.Relate(context.Background(), items)

	assertRelated(t, items[0], "b")
	assertRelated(t, items[1], "a")
}

func TestRelateEmbedFailureFailsOpen(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("embed backend down")}
	engine := NewEngine(emb, DefaultThreshold, io.Discard)

	items := []types.NormalizedArticle{normArticle("a"), normArticle("b")}
	engine.Relate(context.Background(), items)

	for _, item := range items {
		if item.RelatedStories == nil || len(item.RelatedStories) != 0 {
			t.Errorf("item %s RelatedStories = %v, want empty non-nil", item.ID, item.RelatedStories)
		}
	}
}

func TestRelateSingleItemNoEmbedCall(t *testing.T) {
	emb := &fakeEmbedder{vectors: [][]float64{{1, 0}}}
	engine := NewEngine(emb, DefaultThreshold, io.Discard)

	items := []types.NormalizedArticle{normArticle("a")}
	engine.Relate(context.Background(), items)

	if emb.calls != 0 {
		t.Errorf("embed calls = %d, want 0 for a single-item batch", emb.calls)
	}
}

func assertRelated(t *testing.T, item types.NormalizedArticle, want ...string) {
	t.Helper()
	if len(item.RelatedStories) != len(want) {
		t.Fatalf("item %s related = %v, want %v", item.ID, item.RelatedStories, want)
	}
	for i, id := range want {
		if item.RelatedStories[i] != id {
			t.Errorf("item %s related[%d] = %s, want %s", item.ID, i, item.RelatedStories[i], id)
		}
	}
}
