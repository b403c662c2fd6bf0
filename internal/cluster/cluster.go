// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster partitions a batch of normalized articles into connected
// components of the related-stories graph and merges each multi-member
// component into a single representative article.
package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/pkg/types"
)

// mergeSummaryLimit caps how many member summaries feed the combined
// summary prompt.
const mergeSummaryLimit = 3

var mergePromptTmpl = template.Must(template.New("merge").Parse(`
I have multiple news articles about the same topic. Here are summaries of the top articles:

{{.Summaries}}

Please create a single coherent summary that combines the most important information from all these articles in 3-4 sentences:
`))

// Builder groups related articles into representatives.
type Builder struct {
	gen inference.Generator
	log io.Writer
}

// NewBuilder builds a cluster builder. gen is used only for combined
// summaries of multi-member clusters; failures there are absorbed.
func NewBuilder(gen inference.Generator, log io.Writer) *Builder {
	if log == nil {
		log = io.Discard
	}
	return &Builder{gen: gen, log: log}
}

// Group partitions the batch into connected components and returns one
// article per component. Singleton components pass through unchanged.
// Multi-member components are merged into a representative whose relations
// point only outside its own cluster and whose GroupedSources records every
// member's provenance.
//
// Output order follows component discovery order: the BFS loop walks the
// input slice in order, so identical inputs produce identical output order.
func (b *Builder) Group(ctx context.Context, items []types.NormalizedArticle) []types.NormalizedArticle {
	if len(items) <= 1 {
		return items
	}

	adj := buildAdjacency(items)

	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}

	visited := make([]bool, len(items))
	var out []types.NormalizedArticle

	for start := range items {
		if visited[start] {
			continue
		}
		visited[start] = true

		// BFS over the component using an index queue; every node is
		// enqueued at most once, so the walk terminates.
		component := []int{start}
		for head := 0; head < len(component); head++ {
			current := items[component[head]].ID
			for _, neighbor := range adj[current] {
				j, ok := index[neighbor]
				if !ok || visited[j] {
					continue
				}
				visited[j] = true
				component = append(component, j)
			}
		}

		if len(component) == 1 {
			out = append(out, items[start])
			continue
		}

		members := make([]types.NormalizedArticle, len(component))
		for i, j := range component {
			members[i] = items[j]
		}
		out = append(out, b.merge(ctx, members))
	}

	return out
}

// buildAdjacency converts the per-item relation lists into a symmetric
// adjacency map: an edge a–b exists when either item lists the other.
// Neighbor order within a node follows first insertion, keeping traversal
// deterministic.
func buildAdjacency(items []types.NormalizedArticle) map[string][]string {
	adj := make(map[string][]string, len(items))
	seen := make(map[string]map[string]bool, len(items))

	addEdge := func(from, to string) {
		if seen[from] == nil {
			seen[from] = make(map[string]bool)
		}
		if seen[from][to] {
			return
		}
		seen[from][to] = true
		adj[from] = append(adj[from], to)
	}

	for _, item := range items {
		for _, related := range item.RelatedStories {
			addEdge(item.ID, related)
			addEdge(related, item.ID)
		}
	}
	return adj
}

// merge builds the representative for a multi-member component. members
// arrive in discovery order.
func (b *Builder) merge(ctx context.Context, members []types.NormalizedArticle) types.NormalizedArticle {
	memberIDs := make(map[string]bool, len(members))
	for _, m := range members {
		memberIDs[m.ID] = true
	}

	// Most recent member becomes the base record. The sort key is the raw
	// published_date string, so non-ISO dates can pick the wrong member;
	// that lexical comparison is deliberate inherited behavior.
	byRecency := make([]types.NormalizedArticle, len(members))
	copy(byRecency, members)
	sort.SliceStable(byRecency, func(i, j int) bool {
		return byRecency[i].PublishedDate > byRecency[j].PublishedDate
	})

	rep := byRecency[0]

	// The representative points only at stories outside its own cluster.
	outwardSeen := make(map[string]bool)
	outward := []string{}
	for _, m := range members {
		for _, related := range m.RelatedStories {
			if memberIDs[related] || outwardSeen[related] {
				continue
			}
			outwardSeen[related] = true
			outward = append(outward, related)
		}
	}
	sort.Strings(outward)
	rep.RelatedStories = outward

	rep.GroupedSources = make([]types.GroupedSource, len(members))
	for i, m := range members {
		rep.GroupedSources[i] = types.GroupedSource{ID: m.ID, Title: m.Title, URL: m.URL}
	}

	if combined, err := b.mergeSummaries(ctx, byRecency); err != nil {
		// Keep the base record's own summary.
		fmt.Fprintf(b.log, "error creating combined summary: %v\n", err)
	} else {
		rep.Summary = combined
	}

	return rep
}

// mergeSummaries issues one inference call over the top members' summaries
// (by recency) and returns the combined summary.
func (b *Builder) mergeSummaries(ctx context.Context, byRecency []types.NormalizedArticle) (string, error) {
	top := byRecency
	if len(top) > mergeSummaryLimit {
		top = top[:mergeSummaryLimit]
	}

	var lines []string
	for i, m := range top {
		text := m.Summary
		if text == "" {
			text = m.Title
		}
		lines = append(lines, fmt.Sprintf("Article %d: %s", i+1, text))
	}

	var buf bytes.Buffer
	err := mergePromptTmpl.Execute(&buf, struct{ Summaries string }{Summaries: strings.Join(lines, "\n")})
	if err != nil {
		return "", fmt.Errorf("rendering merge prompt: %w", err)
	}

	resp, err := b.gen.Generate(ctx, buf.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}
