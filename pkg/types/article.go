// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the news-engine pipeline.
package types

// Category classifies a news article into one of a fixed set of values.
// The classifier is the single writer of this field; anything outside the
// set is coerced to CategoryOther.
type Category string

const (
	CategoryWorld      Category = "world"
	CategoryUS         Category = "us"
	CategorySports     Category = "sports"
	CategoryFinancial  Category = "financial"
	CategoryTechnology Category = "technology"
	CategoryOther      Category = "other"
)

// Categories lists every valid category in classifier priority order.
var Categories = []Category{
	CategoryWorld,
	CategoryUS,
	CategorySports,
	CategoryFinancial,
	CategoryTechnology,
	CategoryOther,
}

// ParseCategory maps a raw string to a Category, coercing anything that is
// not an exact member of the set to CategoryOther.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryWorld, CategoryUS, CategorySports, CategoryFinancial, CategoryTechnology, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}

// Article is a raw news item as delivered by the acquisition stage.
type Article struct {
	// ID identifies the article. Generated during normalization if absent.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the article headline.
	Title string `json:"title" yaml:"title"`

	// Content is the article body text. May be large.
	Content string `json:"content" yaml:"content"`

	// URL is the source link.
	URL string `json:"url" yaml:"url"`

	// PublishedDate is an opaque date string. ISO-8601 is assumed but not
	// validated; comparisons are lexical.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// Source identifies the provider that supplied the article.
	Source string `json:"source" yaml:"source"`

	// Interest is the user interest tag the article was fetched for, if any.
	Interest string `json:"interest,omitempty" yaml:"interest,omitempty"`

	// Category is the classified category. Defaults to CategoryOther.
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
}

// Embeddable reports whether the article carries any text to embed or
// summarize. Articles that are not embeddable are never persisted.
func (a Article) Embeddable() bool {
	return a.Title != "" || a.Content != ""
}

// GroupedSource records the provenance of one article merged into a
// cluster representative.
type GroupedSource struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// NormalizedArticle is the derived unit produced by the summarizer and
// mutated by the cluster builder. Once persisted it is never updated in
// place; re-runs create new ids unless the caller supplies one.
type NormalizedArticle struct {
	Article `yaml:",inline"`

	// Summary is the model-produced summary, or the title when summarization
	// fell back.
	Summary string `json:"summary" yaml:"summary"`

	// RelatedStories holds ids of articles related by embedding similarity.
	// The relation is symmetric.
	RelatedStories []string `json:"related_stories,omitempty" yaml:"related_stories,omitempty"`

	// GroupedSources lists the members merged into this representative, in
	// cluster discovery order. Empty for singleton clusters.
	GroupedSources []GroupedSource `json:"grouped_sources,omitempty" yaml:"grouped_sources,omitempty"`
}

// Storable reports whether the normalized article carries text worth
// persisting (a summary or at least a title).
func (n NormalizedArticle) Storable() bool {
	return n.Summary != "" || n.Title != ""
}
