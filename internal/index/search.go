// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SearchOptions holds parameters for chunk queries.
type SearchOptions struct {
	// Query is the FTS5 match expression. Required.
	Query string

	// DocID restricts results to one document.
	DocID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is one matching chunk with its provenance.
type SearchResult struct {
	ID        string  `json:"id" yaml:"id"`
	DocID     string  `json:"doc_id" yaml:"doc_id"`
	SourcePDF string  `json:"source_pdf" yaml:"source_pdf"`
	Seq       int     `json:"seq" yaml:"seq"`
	Content   string  `json:"content" yaml:"content"`
	Rank      float64 `json:"rank" yaml:"rank"`
}

// ErrEmptyQuery is returned by Search when no query text is given.
var ErrEmptyQuery = errors.New("search query is empty")

// Search runs a full-text query over indexed chunks, best matches first.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, ErrEmptyQuery
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var qb strings.Builder
	args := []any{opts.Query}
	qb.WriteString(
		`SELECT c.id, c.doc_id, r.source_pdf, c.seq, c.content, chunks_fts.rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		JOIN records r ON r.doc_id = c.doc_id
		WHERE chunks_fts MATCH ?`)
	if opts.DocID != "" {
		qb.WriteString(` AND c.doc_id = ?`)
		args = append(args, opts.DocID)
	}
	qb.WriteString(` ORDER BY chunks_fts.rank LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.DocID, &r.SourcePDF, &r.Seq, &r.Content, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Chunks returns every indexed chunk of docID in order, or of all documents
// when docID is empty.
func (s *Store) Chunks(ctx context.Context, docID string) ([]SearchResult, error) {
	query := `SELECT c.id, c.doc_id, r.source_pdf, c.seq, c.content, 0
		FROM chunks c JOIN records r ON r.doc_id = c.doc_id`
	var args []any
	if docID != "" {
		query += ` WHERE c.doc_id = ?`
		args = append(args, docID)
	}
	query += ` ORDER BY c.doc_id, c.seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.DocID, &r.SourcePDF, &r.Seq, &r.Content, &r.Rank); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
