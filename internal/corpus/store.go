// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists the raw and normalized article collections and
// answers the read-side queries over them.
//
// Both collections live in one SQLite database. Text queries rank by
// cosine distance over embeddings computed at write time; without an
// embedding backend they fall back to FTS5 bm25 ranking. List-valued
// metadata (related stories) is string-encoded at this boundary because
// the row schema holds scalars only; the rest of the pipeline always sees
// real slices.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/pkg/types"
)

const dbFile = "corpus.db"

// Collection names one of the two logical collections.
type Collection string

const (
	CollectionRaw        Collection = "raw"
	CollectionNormalized Collection = "normalized"
)

// Store manages the corpus SQLite database.
type Store struct {
	db         *sql.DB
	embedder   inference.Embedder
	maxResults int
}

// NewStore opens or creates the corpus database at cfg.DataDir/corpus.db
// and creates the schema if it does not exist. embedder may be nil; the
// store then indexes and queries through FTS5 only.
func NewStore(cfg types.CorpusConfig, embedder inference.Embedder) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	s := &Store{db: db, embedder: embedder, maxResults: maxResults}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stories (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			document TEXT NOT NULL,
			title TEXT,
			url TEXT,
			published_date TEXT,
			source TEXT,
			interest TEXT,
			category TEXT NOT NULL DEFAULT 'other',
			related_stories TEXT,
			embedding TEXT,
			UNIQUE(collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_category ON stories(collection, category)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_interest ON stories(collection, interest)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='stories_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE stories_fts USING fts5(document, content=stories, content_rowid=rowid)`,
			`CREATE TRIGGER stories_ai AFTER INSERT ON stories BEGIN
				INSERT INTO stories_fts(rowid, document) VALUES (new.rowid, new.document);
			END`,
			`CREATE TRIGGER stories_ad AFTER DELETE ON stories BEGIN
				INSERT INTO stories_fts(stories_fts, rowid, document) VALUES('delete', old.rowid, old.document);
			END`,
			`CREATE TRIGGER stories_au AFTER UPDATE ON stories BEGIN
				INSERT INTO stories_fts(stories_fts, rowid, document) VALUES('delete', old.rowid, old.document);
				INSERT INTO stories_fts(rowid, document) VALUES (new.rowid, new.document);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Reset destructively empties both collections.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stories`); err != nil {
		return fmt.Errorf("resetting collections: %w", err)
	}
	return nil
}

// row is the flat persisted form of one document plus its metadata.
type row struct {
	collection    Collection
	id            string
	document      string
	title         string
	url           string
	publishedDate string
	source        string
	interest      string
	category      types.Category
	related       []string
}

// AddRaw persists classified raw articles. Articles with neither content
// nor title are skipped and do not count toward the returned total.
// Repeated ids overwrite rather than duplicate.
func (s *Store) AddRaw(ctx context.Context, items []types.Article) (int, error) {
	rows := make([]row, 0, len(items))
	for _, a := range items {
		if !a.Embeddable() {
			continue
		}
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, row{
			collection:    CollectionRaw,
			id:            id,
			document:      a.Title + "\n\n" + a.Content,
			title:         a.Title,
			url:           a.URL,
			publishedDate: a.PublishedDate,
			source:        a.Source,
			interest:      a.Interest,
			category:      a.Category,
		})
	}
	return len(rows), s.insert(ctx, rows)
}

// AddNormalized persists cluster representatives. Articles with neither
// summary nor title are skipped. Repeated ids overwrite rather than
// duplicate, so re-running a batch with caller-supplied ids is idempotent.
func (s *Store) AddNormalized(ctx context.Context, items []types.NormalizedArticle) (int, error) {
	rows := make([]row, 0, len(items))
	for _, n := range items {
		if !n.Storable() {
			continue
		}
		id := n.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, row{
			collection:    CollectionNormalized,
			id:            id,
			document:      n.Title + "\n\n" + n.Summary,
			title:         n.Title,
			url:           n.URL,
			publishedDate: n.PublishedDate,
			source:        n.Source,
			interest:      n.Interest,
			category:      n.Category,
			related:       n.RelatedStories,
		})
	}
	return len(rows), s.insert(ctx, rows)
}

func (s *Store) insert(ctx context.Context, rows []row) error {
	if len(rows) == 0 {
		return nil
	}

	// Embedding failure is not fatal: rows are stored without vectors and
	// queries fall back to FTS5 for them.
	vectors := s.embedRows(ctx, rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO stories
			(collection, id, document, title, url, published_date, source, interest, category, related_stories, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		category := r.category
		if category == "" {
			category = types.CategoryOther
		}

		var embedding any
		if vectors != nil && vectors[i] != nil {
			data, err := json.Marshal(vectors[i])
			if err != nil {
				return fmt.Errorf("marshaling embedding: %w", err)
			}
			embedding = string(data)
		}

		_, err := stmt.ExecContext(ctx,
			string(r.collection), r.id, r.document,
			r.title, r.url, r.publishedDate, r.source, r.interest,
			string(category), encodeRelated(r.related), embedding,
		)
		if err != nil {
			return fmt.Errorf("inserting story %s: %w", r.id, err)
		}
	}

	return tx.Commit()
}

// embedRows returns one vector per row, or nil when no embedder is
// configured or the batched call failed.
func (s *Store) embedRows(ctx context.Context, rows []row) [][]float64 {
	if s.embedder == nil {
		return nil
	}
	texts := make([]string, len(rows))
	for i, r := range rows {
		texts[i] = r.document
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil || len(vectors) != len(rows) {
		return nil
	}
	return vectors
}

// encodeRelated serializes the related-stories list to a scalar string.
// The persisted metadata schema holds scalars only.
func encodeRelated(related []string) string {
	if related == nil {
		related = []string{}
	}
	data, _ := json.Marshal(related)
	return string(data)
}

// decodeRelated deserializes a related-stories string, defaulting to an
// empty list when the value is absent or malformed.
func decodeRelated(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var related []string
	if err := json.Unmarshal([]byte(encoded), &related); err != nil || related == nil {
		return []string{}
	}
	return related
}

// count returns the number of stories in one collection.
func (s *Store) count(ctx context.Context, col Collection) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM stories WHERE collection = ?`, string(col)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s collection: %w", col, err)
	}
	return n, nil
}

// Counts reports the stored totals per collection.
func (s *Store) Counts(ctx context.Context) (raw, normalized int, err error) {
	if raw, err = s.count(ctx, CollectionRaw); err != nil {
		return 0, 0, err
	}
	if normalized, err = s.count(ctx, CollectionNormalized); err != nil {
		return 0, 0, err
	}
	return raw, normalized, nil
}

// lowerOrEmpty normalizes a filter argument before comparison.
func lowerOrEmpty(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
