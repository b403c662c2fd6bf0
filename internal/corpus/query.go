// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/news-engine/internal/similarity"
	"github.com/pdiddy/news-engine/pkg/types"
)

// Document is one persisted story with its metadata, as returned by reads.
type Document struct {
	ID             string         `json:"id"`
	Document       string         `json:"document"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	PublishedDate  string         `json:"published_date"`
	Source         string         `json:"source"`
	Interest       string         `json:"interest,omitempty"`
	Category       types.Category `json:"category"`
	RelatedStories []string       `json:"related_stories,omitempty"`
}

// QueryResult is a Document with a distance score; smaller is closer.
type QueryResult struct {
	Document
	Distance float64 `json:"distance"`
}

const selectColumns = `id, document, title, url, published_date, source, interest, category, related_stories`

// ByCategory returns every story in the collection matching the category.
// An empty category (or "all") returns the whole collection.
func (s *Store) ByCategory(ctx context.Context, col Collection, category string) ([]Document, error) {
	category = lowerOrEmpty(category)
	if category == "" || category == "all" {
		return s.selectDocuments(ctx,
			`SELECT `+selectColumns+` FROM stories WHERE collection = ? ORDER BY rowid`,
			string(col))
	}
	return s.selectDocuments(ctx,
		`SELECT `+selectColumns+` FROM stories WHERE collection = ? AND category = ? ORDER BY rowid`,
		string(col), category)
}

// ByInterest returns normalized stories matching the interest tag. Without
// an interest it returns every story that carries a non-empty tag.
func (s *Store) ByInterest(ctx context.Context, interest string) ([]Document, error) {
	interest = lowerOrEmpty(interest)
	if interest == "" {
		return s.selectDocuments(ctx,
			`SELECT `+selectColumns+` FROM stories WHERE collection = ? AND interest != '' ORDER BY rowid`,
			string(CollectionNormalized))
	}
	return s.selectDocuments(ctx,
		`SELECT `+selectColumns+` FROM stories WHERE collection = ? AND lower(interest) = ? ORDER BY rowid`,
		string(CollectionNormalized), interest)
}

// Get performs point lookups by id, returning found documents in the
// requested order. Missing ids are simply absent from the result.
func (s *Store) Get(ctx context.Context, col Collection, ids []string) ([]Document, error) {
	byID := make(map[string]Document, len(ids))
	for _, id := range ids {
		doc, err := s.getOne(ctx, col, id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		byID[id] = doc
	}

	out := make([]Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) getOne(ctx context.Context, col Collection, id string) (Document, error) {
	r := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM stories WHERE collection = ? AND id = ?`,
		string(col), id)
	return scanDocument(r)
}

// Query returns up to topK stories ranked by ascending distance to the
// query text. With an embedder the distance is cosine distance over stored
// vectors; rows persisted without a vector, or a store without an embedder,
// rank through FTS5 bm25 instead.
func (s *Store) Query(ctx context.Context, col Collection, text string, topK int) ([]QueryResult, error) {
	if topK <= 0 {
		topK = s.maxResults
	}

	if s.embedder != nil {
		results, err := s.vectorQuery(ctx, col, text, topK)
		if err == nil {
			return results, nil
		}
		// Degrade to full-text ranking rather than failing the read.
	}
	return s.ftsQuery(ctx, col, text, topK)
}

func (s *Store) vectorQuery(ctx context.Context, col Collection, text string, topK int) ([]QueryResult, error) {
	vectors, err := s.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors", len(vectors))
	}
	queryVec := vectors[0]

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+`, embedding FROM stories
		 WHERE collection = ? AND embedding IS NOT NULL ORDER BY rowid`,
		string(col))
	if err != nil {
		return nil, fmt.Errorf("querying %s collection: %w", col, err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			doc      Document
			category string
			related  sql.NullString
			embedded string
		)
		if err := rows.Scan(
			&doc.ID, &doc.Document, &doc.Title, &doc.URL, &doc.PublishedDate,
			&doc.Source, &doc.Interest, &category, &related, &embedded,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		doc.Category = types.ParseCategory(category)
		doc.RelatedStories = decodeRelated(related.String)

		var vec []float64
		if err := json.Unmarshal([]byte(embedded), &vec); err != nil {
			continue
		}
		results = append(results, QueryResult{
			Document: doc,
			Distance: 1 - similarity.Similarity(queryVec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *Store) ftsQuery(ctx context.Context, col Collection, text string, topK int) ([]QueryResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.document, s.title, s.url, s.published_date, s.source, s.interest,
			s.category, s.related_stories, bm25(stories_fts) AS distance
		 FROM stories_fts
		 JOIN stories s ON s.rowid = stories_fts.rowid
		 WHERE stories_fts MATCH ? AND s.collection = ?
		 ORDER BY distance
		 LIMIT ?`,
		ftsEscape(text), string(col), topK)
	if err != nil {
		return nil, fmt.Errorf("querying %s collection: %w", col, err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			doc      Document
			category string
			related  sql.NullString
			distance float64
		)
		if err := rows.Scan(
			&doc.ID, &doc.Document, &doc.Title, &doc.URL, &doc.PublishedDate,
			&doc.Source, &doc.Interest, &category, &related, &distance,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		doc.Category = types.ParseCategory(category)
		doc.RelatedStories = decodeRelated(related.String)
		results = append(results, QueryResult{Document: doc, Distance: distance})
	}
	return results, rows.Err()
}

// ftsEscape quotes each term so user queries cannot inject FTS5 syntax.
func ftsEscape(text string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func (s *Store) selectDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stories: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			doc      Document
			category string
			related  sql.NullString
		)
		if err := rows.Scan(
			&doc.ID, &doc.Document, &doc.Title, &doc.URL, &doc.PublishedDate,
			&doc.Source, &doc.Interest, &category, &related,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		doc.Category = types.ParseCategory(category)
		doc.RelatedStories = decodeRelated(related.String)
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (Document, error) {
	var (
		doc      Document
		category string
		related  sql.NullString
	)
	err := r.Scan(
		&doc.ID, &doc.Document, &doc.Title, &doc.URL, &doc.PublishedDate,
		&doc.Source, &doc.Interest, &category, &related,
	)
	if err != nil {
		return Document{}, err
	}
	doc.Category = types.ParseCategory(category)
	doc.RelatedStories = decodeRelated(related.String)
	return doc, nil
}
