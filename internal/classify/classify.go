// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns each article one category from the fixed set.
// The primary path is a single model call per article; classification never
// returns an error to the caller — every failure coerces to CategoryOther.
package classify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/pkg/types"
)

// contentExcerptLen caps the article content embedded in the prompt so
// prompt size stays bounded regardless of article length.
const contentExcerptLen = 500

// categoryPromptTmpl instructs the model to answer with exactly one
// category name.
var categoryPromptTmpl = template.Must(template.New("categorize").Parse(`
Categorize the following news article into exactly ONE of these categories:
- world: For international news, global events, and news about countries other than the US
- us: For US domestic news, politics, and events within the United States
- sports: For sports-related news, games, athletes, and sporting events
- financial: For news about markets, economy, business, and finance
- technology: For news about technology, software, hardware, AI, and digital developments
- other: For news that doesn't fit clearly into any of the above categories

News Title: {{.Title}}

News Content (excerpt): {{.Excerpt}}...

Respond with the single most appropriate category name only (lowercase). For example, just respond with "world" or "technology".
`))

// Classifier assigns categories via model inference.
type Classifier struct {
	gen inference.Generator
	log io.Writer
}

// NewClassifier builds a classifier. Caught inference errors are reported
// to log; pass io.Discard to silence them.
func NewClassifier(gen inference.Generator, log io.Writer) *Classifier {
	if log == nil {
		log = io.Discard
	}
	return &Classifier{gen: gen, log: log}
}

// Classify returns a copy of the article with Category set to a member of
// the fixed set. An article with neither title nor content is CategoryOther
// with no inference call. A model response outside the set, or any
// inference error, also coerces to CategoryOther.
func (c *Classifier) Classify(ctx context.Context, a types.Article) types.Article {
	out, err := c.classifyOnce(ctx, a)
	if err != nil {
		fmt.Fprintf(c.log, "error categorizing %q: %v\n", a.Title, err)
		a.Category = types.CategoryOther
		return a
	}
	return out
}

func (c *Classifier) classifyOnce(ctx context.Context, a types.Article) (types.Article, error) {
	if !a.Embeddable() {
		a.Category = types.CategoryOther
		return a, nil
	}

	prompt, err := renderCategoryPrompt(a)
	if err != nil {
		return a, fmt.Errorf("rendering category prompt: %w", err)
	}

	resp, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return a, err
	}

	a.Category = types.ParseCategory(strings.ToLower(strings.TrimSpace(resp)))
	return a, nil
}

// ClassifyBatch classifies every article and groups the results by
// category, preserving input order within each bucket.
func (c *Classifier) ClassifyBatch(ctx context.Context, items []types.Article) map[types.Category][]types.Article {
	classified := make([]types.Article, len(items))
	for i, a := range items {
		classified[i] = c.Classify(ctx, a)
	}
	return groupByCategory(classified)
}

// ClassifyBatchStrict classifies like ClassifyBatch but surfaces the first
// inference failure instead of coercing it, so a caller can switch the
// whole batch over to KeywordClassify when the backend is down.
func (c *Classifier) ClassifyBatchStrict(ctx context.Context, items []types.Article) (map[types.Category][]types.Article, error) {
	classified := make([]types.Article, len(items))
	for i, a := range items {
		out, err := c.classifyOnce(ctx, a)
		if err != nil {
			return nil, err
		}
		classified[i] = out
	}
	return groupByCategory(classified), nil
}

// ClassifyBatchConcurrent classifies articles on a bounded worker pool, one
// inference call per article, and joins all results before grouping. The
// grouping is identical to ClassifyBatch for the same input: results are
// written back by input index, so completion order does not affect which
// bucket an article lands in.
func (c *Classifier) ClassifyBatchConcurrent(ctx context.Context, items []types.Article, workers int) map[types.Category][]types.Article {
	if workers <= 1 || len(items) <= 1 {
		return c.ClassifyBatch(ctx, items)
	}

	classified := make([]types.Article, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, a := range items {
		i, a := i, a
		g.Go(func() error {
			classified[i] = c.Classify(gctx, a)
			return nil
		})
	}
	g.Wait()

	return groupByCategory(classified)
}

func groupByCategory(items []types.Article) map[types.Category][]types.Article {
	grouped := make(map[types.Category][]types.Article, len(types.Categories))
	for _, cat := range types.Categories {
		grouped[cat] = nil
	}
	for _, a := range items {
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	return grouped
}

func renderCategoryPrompt(a types.Article) (string, error) {
	excerpt := a.Content
	if len(excerpt) > contentExcerptLen {
		excerpt = excerpt[:contentExcerptLen]
	}
	var buf bytes.Buffer
	err := categoryPromptTmpl.Execute(&buf, struct {
		Title   string
		Excerpt string
	}{Title: a.Title, Excerpt: excerpt})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
