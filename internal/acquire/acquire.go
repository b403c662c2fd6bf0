// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire fetches news articles from the Tavily search API, both
// general top headlines and per-interest queries. Results come back as
// Articles ready for the content pipeline; categorization happens later.
package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/news-engine/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

const (
	defaultTopResults      = 10
	defaultInterestResults = 5
	perInterestResults     = 3
)

// Client queries the Tavily search API for news.
type Client struct {
	http *http.Client
	cfg  types.AcquireConfig
	log  io.Writer
}

// NewClient builds a Tavily client. The API key is required; log receives
// per-interest failure notices during batch collection.
func NewClient(cfg types.AcquireConfig, log io.Writer) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily API key not provided")
	}
	if log == nil {
		log = io.Discard
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
		log:  log,
	}, nil
}

// TopHeadlines collects top news stories from the last day.
func (c *Client) TopHeadlines(ctx context.Context) ([]types.Article, error) {
	maxResults := c.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultTopResults
	}

	query := fmt.Sprintf("top news stories since %s", yesterday())
	results, err := c.search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	articles := make([]types.Article, len(results))
	for i, r := range results {
		articles[i] = r.article("tavily_top_news", "")
	}
	return articles, nil
}

// ByInterest collects stories about one interest topic from the last day.
// maxResults <= 0 uses the default.
func (c *Client) ByInterest(ctx context.Context, interest string, maxResults int) ([]types.Article, error) {
	if maxResults <= 0 {
		maxResults = defaultInterestResults
	}

	query := fmt.Sprintf("latest news about %s since %s", interest, yesterday())
	results, err := c.search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	articles := make([]types.Article, len(results))
	for i, r := range results {
		articles[i] = r.article("tavily_interest_"+interest, interest)
	}
	return articles, nil
}

// ByInterests collects a few stories per interest, continuing past
// individual interest failures so one bad query does not lose the batch.
func (c *Client) ByInterests(ctx context.Context, interests []string) []types.Article {
	var all []types.Article
	for _, interest := range interests {
		articles, err := c.ByInterest(ctx, interest, perInterestResults)
		if err != nil {
			fmt.Fprintf(c.log, "failed: interest %q (%v)\n", interest, err)
			continue
		}
		all = append(all, articles...)
	}
	return all
}

type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
}

func (r searchResult) article(source, interest string) types.Article {
	return types.Article{
		Title:         r.Title,
		Content:       r.Content,
		URL:           r.URL,
		PublishedDate: r.PublishedDate,
		Source:        source,
		Interest:      interest,
		Category:      types.CategoryOther,
	}
}

func (c *Client) search(ctx context.Context, query string, maxResults int) ([]searchResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:            c.cfg.APIKey,
		Query:             query,
		SearchDepth:       "advanced",
		IncludeRawContent: true,
		MaxResults:        maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing tavily response: %w", err)
	}
	return sr.Results, nil
}

func yesterday() string {
	return time.Now().AddDate(0, 0, -1).Format("2006-01-02")
}
