// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content is the pipeline orchestrator: it drives a batch of
// articles through classification, raw storage, normalization, clustering,
// and normalized storage, and serves the read-side query operations over
// the persisted corpus.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/news-engine/internal/classify"
	"github.com/pdiddy/news-engine/internal/cluster"
	"github.com/pdiddy/news-engine/internal/corpus"
	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/internal/normalize"
	"github.com/pdiddy/news-engine/pkg/types"
)

// Operation result statuses. Component-level inference failures are
// absorbed inside the pipeline stages; only request-level failures (empty
// input, not-found, store errors) surface as StatusError.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var answerPromptTmpl = template.Must(template.New("answer").Parse(`
Based on the following news content, please answer this question:

Question: {{.Question}}

News Content:
{{.Content}}

Answer the question factually and concisely based only on the information provided in the news content. If the answer cannot be determined from the provided content, state that clearly.

Answer:
`))

// ProcessResult summarizes one pipeline run.
type ProcessResult struct {
	Status          string                 `json:"status"`
	Message         string                 `json:"message,omitempty"`
	RawCount        int                    `json:"raw_count"`
	NormalizedCount int                    `json:"normalized_count"`
	Categories      map[types.Category]int `json:"categories,omitempty"`
}

// StoryResult is the detail view of one normalized story.
type StoryResult struct {
	Status         string                `json:"status"`
	Message        string                `json:"message,omitempty"`
	ID             string                `json:"id,omitempty"`
	Title          string                `json:"title,omitempty"`
	Summary        string                `json:"summary,omitempty"`
	URL            string                `json:"url,omitempty"`
	PublishedDate  string                `json:"published_date,omitempty"`
	Category       types.Category        `json:"category,omitempty"`
	RelatedStories []types.GroupedSource `json:"related_stories,omitempty"`
}

// AnswerResult is a free-text answer grounded in stored news content.
type AnswerResult struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Service wires the pipeline stages together. It holds no cross-call
// state: each Process call is independent and the store is the only
// persistent collaborator.
type Service struct {
	classifier *classify.Classifier
	summarizer *normalize.Summarizer
	builder    *cluster.Builder
	store      *corpus.Store
	gen        inference.Generator
	log        io.Writer
}

// NewService builds the orchestrator from its collaborators. log receives
// progress lines during Process; pass io.Discard to silence them.
func NewService(
	classifier *classify.Classifier,
	summarizer *normalize.Summarizer,
	builder *cluster.Builder,
	store *corpus.Store,
	gen inference.Generator,
	log io.Writer,
) *Service {
	if log == nil {
		log = io.Discard
	}
	return &Service{
		classifier: classifier,
		summarizer: summarizer,
		builder:    builder,
		store:      store,
		gen:        gen,
		log:        log,
	}
}

// Process runs the full pipeline over one batch: classify, store raw,
// normalize, group, store normalized. The returned category counts are
// pre-clustering classification counts, not representative counts.
//
// If the model classification path fails, the whole batch is reclassified
// through the deterministic keyword fallback and the run still succeeds.
// Raw storage is not rolled back when a later stage fails; the raw
// collection stays authoritative even for a partially processed batch.
func (s *Service) Process(ctx context.Context, items []types.Article) ProcessResult {
	if len(items) == 0 {
		return ProcessResult{Status: StatusError, Message: "no news items provided"}
	}

	fmt.Fprintf(s.log, "processing %d news items\n", len(items))

	fmt.Fprintln(s.log, "categorizing news...")
	grouped, err := s.classifier.ClassifyBatchStrict(ctx, items)
	if err != nil {
		fmt.Fprintf(s.log, "error during categorization: %v\n", err)
		fmt.Fprintln(s.log, "falling back to keyword categorization...")
		grouped = classify.KeywordClassify(items)
	}

	categories := make(map[types.Category]int)
	classified := make([]types.Article, 0, len(items))
	for _, cat := range types.Categories {
		bucket := grouped[cat]
		if len(bucket) == 0 {
			continue
		}
		categories[cat] = len(bucket)
		classified = append(classified, bucket...)
	}

	fmt.Fprintln(s.log, "storing raw news...")
	rawCount, err := s.store.AddRaw(ctx, classified)
	if err != nil {
		return ProcessResult{
			Status:     StatusError,
			Message:    fmt.Sprintf("storing raw news: %v", err),
			Categories: categories,
		}
	}

	fmt.Fprintln(s.log, "normalizing news...")
	normalized := s.summarizer.NormalizeBatch(ctx, classified)

	fmt.Fprintln(s.log, "grouping similar stories...")
	representatives := s.builder.Group(ctx, normalized)

	fmt.Fprintln(s.log, "storing normalized news...")
	normalizedCount, err := s.store.AddNormalized(ctx, representatives)
	if err != nil {
		return ProcessResult{
			Status:     StatusError,
			Message:    fmt.Sprintf("storing normalized news: %v", err),
			RawCount:   rawCount,
			Categories: categories,
		}
	}

	return ProcessResult{
		Status:          StatusSuccess,
		RawCount:        rawCount,
		NormalizedCount: normalizedCount,
		Categories:      categories,
	}
}

// NewsByCategory lists normalized stories for a category; empty or "all"
// lists everything.
func (s *Service) NewsByCategory(ctx context.Context, category string) ([]corpus.Document, error) {
	return s.store.ByCategory(ctx, corpus.CollectionNormalized, category)
}

// NewsByInterest lists normalized stories carrying the interest tag;
// without an interest, every tagged story.
func (s *Service) NewsByInterest(ctx context.Context, interest string) ([]corpus.Document, error) {
	return s.store.ByInterest(ctx, interest)
}

// SearchNews ranks normalized stories against the query, ascending by
// distance.
func (s *Service) SearchNews(ctx context.Context, query string, topK int) ([]corpus.QueryResult, error) {
	return s.store.Query(ctx, corpus.CollectionNormalized, query, topK)
}

// SummarizeStory returns the detail view of one normalized story,
// resolving its related-story ids to titles and URLs.
func (s *Service) SummarizeStory(ctx context.Context, storyID string) StoryResult {
	docs, err := s.store.Get(ctx, corpus.CollectionNormalized, []string{storyID})
	if err != nil {
		return StoryResult{Status: StatusError, Message: fmt.Sprintf("looking up story: %v", err)}
	}
	if len(docs) == 0 {
		return StoryResult{Status: StatusError, Message: "story not found"}
	}
	doc := docs[0]

	result := StoryResult{
		Status:        StatusSuccess,
		ID:            doc.ID,
		Title:         doc.Title,
		Summary:       doc.Document,
		URL:           doc.URL,
		PublishedDate: doc.PublishedDate,
		Category:      doc.Category,
	}

	if len(doc.RelatedStories) > 0 {
		related, err := s.store.Get(ctx, corpus.CollectionNormalized, doc.RelatedStories)
		if err != nil {
			return StoryResult{Status: StatusError, Message: fmt.Sprintf("resolving related stories: %v", err)}
		}
		for _, r := range related {
			result.RelatedStories = append(result.RelatedStories,
				types.GroupedSource{ID: r.ID, Title: r.Title, URL: r.URL})
		}
	}

	return result
}

// AnswerQuestion answers a free-text question from stored news. With a
// story id it reads that story from the raw collection for full detail;
// otherwise it retrieves the top three matching raw stories and
// concatenates them as context. One generation call either way.
func (s *Service) AnswerQuestion(ctx context.Context, question, storyID string) AnswerResult {
	var content, source string

	if storyID != "" {
		docs, err := s.store.Get(ctx, corpus.CollectionRaw, []string{storyID})
		if err != nil {
			return AnswerResult{Status: StatusError, Message: fmt.Sprintf("looking up story: %v", err)}
		}
		if len(docs) == 0 {
			return AnswerResult{Status: StatusError, Message: "story not found"}
		}
		content = docs[0].Document
		source = docs[0].Title
	} else {
		results, err := s.store.Query(ctx, corpus.CollectionRaw, question, 3)
		if err != nil {
			return AnswerResult{Status: StatusError, Message: fmt.Sprintf("searching stories: %v", err)}
		}
		if len(results) == 0 {
			return AnswerResult{Status: StatusError, Message: "no relevant stories found"}
		}

		var parts []string
		for _, r := range results {
			parts = append(parts, fmt.Sprintf("Article: %s\n%s", r.Title, r.Document))
		}
		content = strings.Join(parts, "\n\n")
		source = "Multiple news articles"
	}

	var buf bytes.Buffer
	err := answerPromptTmpl.Execute(&buf, struct{ Question, Content string }{
		Question: question,
		Content:  content,
	})
	if err != nil {
		return AnswerResult{Status: StatusError, Message: fmt.Sprintf("rendering answer prompt: %v", err)}
	}

	answer, err := s.gen.Generate(ctx, buf.String())
	if err != nil {
		return AnswerResult{Status: StatusError, Message: fmt.Sprintf("error generating answer: %v", err)}
	}

	return AnswerResult{
		Status:   StatusSuccess,
		Question: question,
		Answer:   strings.TrimSpace(answer),
		Source:   source,
	}
}
