// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"

	"github.com/pdiddy/news-engine/pkg/types"
)

// keywordPrefixLen is how much of the content participates in keyword
// matching alongside the title.
const keywordPrefixLen = 100

// keywordSet pairs a category with its trigger substrings.
type keywordSet struct {
	category types.Category
	words    []string
}

// keywordSets is evaluated in fixed priority order; the first set with a
// matching word wins. Matching is substring-based against the lowercased
// title and content prefix, so e.g. "us" also fires inside longer words.
// That looseness is inherited source behavior and kept deliberately.
var keywordSets = []keywordSet{
	{types.CategoryWorld, []string{"world", "global", "international", "europe", "asia", "africa"}},
	{types.CategoryUS, []string{"us", "united states", "america", "washington"}},
	{types.CategorySports, []string{"sport", "game", "team", "player", "match", "ball", "tournament"}},
	{types.CategoryFinancial, []string{"market", "stock", "economy", "business", "finance", "dollar", "bank"}},
	{types.CategoryTechnology, []string{"tech", "technology", "software", "computer", "digital", "ai", "app"}},
}

// KeywordClassify is the deterministic fallback used when the inference
// backend is unavailable. It never fails and requires no model; articles
// matching no keyword set land in CategoryOther.
func KeywordClassify(items []types.Article) map[types.Category][]types.Article {
	classified := make([]types.Article, len(items))
	for i, a := range items {
		a.Category = keywordCategory(a)
		classified[i] = a
	}
	return groupByCategory(classified)
}

func keywordCategory(a types.Article) types.Category {
	title := strings.ToLower(a.Title)
	prefix := a.Content
	if len(prefix) > keywordPrefixLen {
		prefix = prefix[:keywordPrefixLen]
	}
	prefix = strings.ToLower(prefix)

	for _, set := range keywordSets {
		for _, word := range set.words {
			if strings.Contains(title, word) || strings.Contains(prefix, word) {
				return set.category
			}
		}
	}
	return types.CategoryOther
}
