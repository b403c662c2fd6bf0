// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/news-engine/internal/classify"
	"github.com/pdiddy/news-engine/internal/cluster"
	"github.com/pdiddy/news-engine/internal/corpus"
	"github.com/pdiddy/news-engine/internal/normalize"
	"github.com/pdiddy/news-engine/internal/similarity"
	"github.com/pdiddy/news-engine/pkg/types"
)

// scriptedGenerator routes each prompt kind to a canned behavior so one
// fake can serve the whole pipeline.
type scriptedGenerator struct {
	classifyErr error
	answer      string
	answerErr   error
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(prompt, "Categorize the following"):
		if g.classifyErr != nil {
			return "", g.classifyErr
		}
		if strings.Contains(lower, "inflation") {
			return "financial", nil
		}
		return "sports", nil
	case strings.Contains(prompt, "Summarize the following"):
		if strings.Contains(lower, "inflation") {
			return "Markets slid on fresh inflation data.", nil
		}
		return "The home team won the big sport match.", nil
	case strings.Contains(prompt, "single coherent summary"):
		return "Combined inflation coverage across outlets.", nil
	case strings.Contains(prompt, "answer this question"):
		if g.answerErr != nil {
			return "", g.answerErr
		}
		return g.answer, nil
	default:
		return "", errors.New("unexpected prompt")
	}
}

// keywordEmbedder maps text to keyword-count vectors: near-duplicate
// inflation texts land close together, sports text far away.
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	vecs := make([][]float64, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		vecs[i] = []float64{
			float64(strings.Count(lower, "inflation")),
			float64(strings.Count(lower, "sport")),
			1,
		}
	}
	return vecs, nil
}

func testArticles() []types.Article {
	return []types.Article{
		{
			ID:            "inf-1",
			Title:         "Inflation fears rattle markets",
			Content:       "New inflation data sparked a global sell-off as inflation expectations rose.",
			URL:           "https://example.com/inf-1",
			PublishedDate: "2024-01-01",
			Source:        "wire",
		},
		{
			ID:            "inf-2",
			Title:         "Inflation data sends stocks lower",
			Content:       "Stocks fell sharply after inflation figures came in hot, with inflation worries dominating.",
			URL:           "https://example.com/inf-2",
			PublishedDate: "2024-01-02",
			Source:        "wire",
		},
		{
			ID:            "sports-1",
			Title:         "Cup final goes to extra time",
			Content:       "The biggest sport event of the year ended in a dramatic extra-time win.",
			URL:           "https://example.com/sports-1",
			PublishedDate: "2024-01-02",
			Source:        "wire",
		},
	}
}

func newTestService(t *testing.T, gen *scriptedGenerator) *Service {
	t.Helper()

	embedder := keywordEmbedder{}
	store, err := corpus.NewStore(types.CorpusConfig{DataDir: t.TempDir()}, embedder)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	engine := similarity.NewEngine(embedder, similarity.DefaultThreshold, io.Discard)
	return NewService(
		classify.NewClassifier(gen, io.Discard),
		normalize.NewSummarizer(gen, engine, io.Discard),
		cluster.NewBuilder(gen, io.Discard),
		store,
		gen,
		io.Discard,
	)
}

func TestProcessEmptyInput(t *testing.T) {
	s := newTestService(t, &scriptedGenerator{})

	result := s.Process(context.Background(), nil)
	if result.Status != StatusError {
		t.Errorf("status = %q, want %q", result.Status, StatusError)
	}
	if result.RawCount != 0 || result.NormalizedCount != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", result.RawCount, result.NormalizedCount)
	}
}

func TestProcessEndToEnd(t *testing.T) {
	s := newTestService(t, &scriptedGenerator{})
	ctx := context.Background()

	result := s.Process(ctx, testArticles())

	if result.Status != StatusSuccess {
		t.Fatalf("status = %q (%s), want %q", result.Status, result.Message, StatusSuccess)
	}
	if result.RawCount != 3 {
		t.Errorf("raw count = %d, want 3", result.RawCount)
	}
	if result.NormalizedCount != 2 {
		t.Errorf("normalized count = %d, want 2 (inflation pair merged)", result.NormalizedCount)
	}
	if result.Categories[types.CategoryFinancial] != 2 || result.Categories[types.CategorySports] != 1 {
		t.Errorf("categories = %v, want financial: 2, sports: 1", result.Categories)
	}

	// Category browse returns the merged representative, not the originals.
	financial, err := s.NewsByCategory(ctx, "financial")
	if err != nil {
		t.Fatal(err)
	}
	if len(financial) != 1 {
		t.Fatalf("financial stories = %d, want 1 merged representative", len(financial))
	}
	// The most recent member is the base record.
	if financial[0].ID != "inf-2" {
		t.Errorf("representative id = %s, want inf-2", financial[0].ID)
	}
}

func TestProcessKeywordFallback(t *testing.T) {
	gen := &scriptedGenerator{classifyErr: errors.New("backend unavailable")}
	s := newTestService(t, gen)

	result := s.Process(context.Background(), testArticles())

	if result.Status != StatusSuccess {
		t.Fatalf("status = %q (%s), want %q", result.Status, result.Message, StatusSuccess)
	}
	if result.RawCount != 3 {
		t.Errorf("raw count = %d, want 3", result.RawCount)
	}
	// Keyword matching still lands the batch in real categories: the
	// inflation articles mention "markets"/"stocks", the cup final mentions
	// "sport".
	if result.Categories[types.CategoryOther] == len(testArticles()) {
		t.Error("keyword fallback left every article in the other bucket")
	}
	if result.Categories[types.CategorySports] != 1 {
		t.Errorf("categories = %v, want one sports article via keywords", result.Categories)
	}
}

func TestSearchNewsOrdersByAscendingDistance(t *testing.T) {
	s := newTestService(t, &scriptedGenerator{})
	ctx := context.Background()

	if result := s.Process(ctx, testArticles()); result.Status != StatusSuccess {
		t.Fatalf("process failed: %s", result.Message)
	}

	results, err := s.SearchNews(ctx, "inflation outlook", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Distance > results[1].Distance {
		t.Errorf("distances not ascending: %v then %v", results[0].Distance, results[1].Distance)
	}
	if results[0].ID != "inf-2" {
		t.Errorf("top result = %s, want the merged inflation representative", results[0].ID)
	}
	if results[1].ID != "sports-1" {
		t.Errorf("second result = %s, want the unrelated sports story", results[1].ID)
	}
}

func TestSummarizeStory(t *testing.T) {
	s := newTestService(t, &scriptedGenerator{})
	ctx := context.Background()

	if result := s.Process(ctx, testArticles()); result.Status != StatusSuccess {
		t.Fatalf("process failed: %s", result.Message)
	}

	story := s.SummarizeStory(ctx, "inf-2")
	if story.Status != StatusSuccess {
		t.Fatalf("status = %q (%s), want %q", story.Status, story.Message, StatusSuccess)
	}
	if story.ID != "inf-2" {
		t.Errorf("id = %s, want inf-2", story.ID)
	}
	if !strings.Contains(story.Summary, "Combined inflation coverage") {
		t.Errorf("summary = %q, want the combined cluster summary", story.Summary)
	}
	// Intra-cluster relations were folded into the representative.
	if len(story.RelatedStories) != 0 {
		t.Errorf("related stories = %+v, want none", story.RelatedStories)
	}
}

func TestSummarizeStoryNotFound(t *testing.T) {
	s := newTestService(t, &scriptedGenerator{})

	story := s.SummarizeStory(context.Background(), "missing")
	if story.Status != StatusError {
		t.Errorf("status = %q, want %q", story.Status, StatusError)
	}
	if story.Message != "story not found" {
		t.Errorf("message = %q, want %q", story.Message, "story not found")
	}
}

func TestAnswerQuestionScopedToStory(t *testing.T) {
	gen := &scriptedGenerator{answer: "Markets fell on inflation data."}
	s := newTestService(t, gen)
	ctx := context.Background()

	if result := s.Process(ctx, testArticles()); result.Status != StatusSuccess {
		t.Fatalf("process failed: %s", result.Message)
	}

	answer := s.AnswerQuestion(ctx, "Why did markets fall?", "inf-1")
	if answer.Status != StatusSuccess {
		t.Fatalf("status = %q (%s), want %q", answer.Status, answer.Message, StatusSuccess)
	}
	if answer.Answer != "Markets fell on inflation data." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Source != "Inflation fears rattle markets" {
		t.Errorf("source = %q, want the scoped story title", answer.Source)
	}
}

func TestAnswerQuestionAcrossStories(t *testing.T) {
	gen := &scriptedGenerator{answer: "Inflation worried investors."}
	s := newTestService(t, gen)
	ctx := context.Background()

	if result := s.Process(ctx, testArticles()); result.Status != StatusSuccess {
		t.Fatalf("process failed: %s", result.Message)
	}

	answer := s.AnswerQuestion(ctx, "What drove the inflation coverage?", "")
	if answer.Status != StatusSuccess {
		t.Fatalf("status = %q (%s), want %q", answer.Status, answer.Message, StatusSuccess)
	}
	if answer.Source != "Multiple news articles" {
		t.Errorf("source = %q, want %q", answer.Source, "Multiple news articles")
	}
}

func TestAnswerQuestionGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{answerErr: errors.New("backend unavailable")}
	s := newTestService(t, gen)
	ctx := context.Background()

	if result := s.Process(ctx, testArticles()); result.Status != StatusSuccess {
		t.Fatalf("process failed: %s", result.Message)
	}

	answer := s.AnswerQuestion(ctx, "Why?", "inf-1")
	if answer.Status != StatusError {
		t.Errorf("status = %q, want %q", answer.Status, StatusError)
	}
}
