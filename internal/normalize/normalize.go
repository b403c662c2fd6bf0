// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns raw articles into summarized NormalizedArticles
// and populates the related-stories relation for a batch.
package normalize

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/internal/similarity"
	"github.com/pdiddy/news-engine/pkg/types"
)

// summaryExcerptLen caps the article content embedded in the summary prompt.
const summaryExcerptLen = 5000

var summaryPromptTmpl = template.Must(template.New("summarize").Parse(`
Summarize the following news article in 3-4 sentences. Keep the summary concise but include all important details.

News Title: {{.Title}}

News Content: {{.Excerpt}}

Summary:
`))

// Summarizer produces normalized articles via model inference. A nil
// similarity engine is a supported degraded mode: batches are summarized
// but the related-stories relation stays empty.
type Summarizer struct {
	gen    inference.Generator
	engine *similarity.Engine
	log    io.Writer
}

// NewSummarizer builds a summarizer. engine may be nil when no embedding
// backend is available.
func NewSummarizer(gen inference.Generator, engine *similarity.Engine, log io.Writer) *Summarizer {
	if log == nil {
		log = io.Discard
	}
	return &Summarizer{gen: gen, engine: engine, log: log}
}

// Summarize copies the article into a NormalizedArticle with Summary set.
// An article with neither title nor content gets an empty summary with no
// inference call. On inference failure the summary falls back to the title
// verbatim — unlike classification, which coerces failures to a default
// category, a failed summary still carries the headline.
func (s *Summarizer) Summarize(ctx context.Context, a types.Article) types.NormalizedArticle {
	n := types.NormalizedArticle{Article: a}

	if !a.Embeddable() {
		return n
	}

	prompt, err := renderSummaryPrompt(a)
	if err != nil {
		fmt.Fprintf(s.log, "error rendering summary prompt: %v\n", err)
		n.Summary = a.Title
		return n
	}

	resp, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintf(s.log, "error summarizing %q: %v\n", a.Title, err)
		n.Summary = a.Title
		return n
	}

	n.Summary = strings.TrimSpace(resp)
	return n
}

// NormalizeBatch summarizes every article, assigns a fresh unique id to any
// article lacking one, and populates the related-stories relation when the
// batch has more than one item and an embedding backend is available.
func (s *Summarizer) NormalizeBatch(ctx context.Context, items []types.Article) []types.NormalizedArticle {
	if len(items) == 0 {
		return nil
	}

	normalized := make([]types.NormalizedArticle, 0, len(items))
	for _, a := range items {
		n := s.Summarize(ctx, a)
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		normalized = append(normalized, n)
	}

	if len(normalized) > 1 && s.engine != nil {
		s.engine.Relate(ctx, normalized)
	}

	return normalized
}

func renderSummaryPrompt(a types.Article) (string, error) {
	excerpt := a.Content
	if len(excerpt) > summaryExcerptLen {
		excerpt = excerpt[:summaryExcerptLen]
	}
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Title   string
		Excerpt string
	}{Title: a.Title, Excerpt: excerpt})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
