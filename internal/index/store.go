// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index loads processed records into a SQLite database with an
// FTS5 table so chunks can be searched by downstream tools. The index
// mirrors the output directory: each ingest adds new records, refreshes
// changed ones, and drops documents whose record file was deleted.
package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/minio/highwayhash"

	"github.com/pdiddy/pdfchunk/internal/record"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

// hashKey is the fixed highwayhash key for chunk ids. Changing it changes
// every id in existing databases.
var hashKey = []byte("pdfchunk-chunk-id-key-0123456789")

// Store manages the chunk index database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the index at cfg.DBPath, creating its parent
// directory and schema as needed.
func Open(cfg types.IndexConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = types.DefaultIndexDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS records (
			doc_id TEXT PRIMARY KEY,
			source_pdf TEXT NOT NULL,
			total_chunks INTEGER NOT NULL,
			file_mod_time TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			doc_id TEXT NOT NULL REFERENCES records(doc_id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id, seq)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(content, content=chunks, content_rowid=rowid)`,
		`CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int

	// Removed counts documents dropped because their record file is gone.
	Removed int
}

// Total returns the number of record files seen.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest loads every record file in outputDir. Records whose modification
// time matches the stored one are skipped; changed records replace their
// previous chunks. Each record is committed in its own transaction, and a
// bad record is counted as failed without stopping the run. Two files
// naming the same document (processed_a.json and processed_a.yaml) are
// ambiguous: the first in name order is indexed and the rest fail.
// Documents whose record file no longer exists are removed from the index.
func (s *Store) Ingest(ctx context.Context, outputDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading output directory %s: %w", outputDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var summary IngestSummary
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !record.IsRecordFile(entry.Name()) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := record.IDFromFile(entry.Name())
		if first, dup := seen[docID]; dup {
			fmt.Fprintf(w, "failed  %s: duplicate record file %s (using %s)\n", docID, entry.Name(), first)
			summary.Failed++
			continue
		}
		seen[docID] = entry.Name()
		path := filepath.Join(outputDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM records WHERE doc_id = ?`, docID,
		).Scan(&storedModTime)
		var isUpdate bool
		switch {
		case err == nil:
			if storedModTime == modTime {
				fmt.Fprintf(w, "skipped %s\n", docID)
				summary.Skipped++
				continue
			}
			isUpdate = true
		case errors.Is(err, sql.ErrNoRows):
		default:
			fmt.Fprintf(w, "failed  %s: looking up stored record: %v\n", docID, err)
			summary.Failed++
			continue
		}

		rec, err := record.Read(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestRecord(ctx, docID, rec, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d chunks)\n", docID, rec.TotalChunks)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d chunks)\n", docID, rec.TotalChunks)
			summary.Indexed++
		}
	}

	removed, err := s.pruneMissing(ctx, seen, w)
	summary.Removed = removed
	if err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, removed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Removed)
	return summary, nil
}

// pruneMissing deletes documents that have no record file in present.
func (s *Store) pruneMissing(ctx context.Context, present map[string]string, w io.Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id FROM records ORDER BY doc_id`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed records: %w", err)
	}
	var stale []string
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning record row: %w", err)
		}
		if _, ok := present[docID]; !ok {
			stale = append(stale, docID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing indexed records: %w", err)
	}

	for i, docID := range stale {
		if err := s.removeRecord(ctx, docID); err != nil {
			return i, fmt.Errorf("removing %s: %w", docID, err)
		}
		fmt.Fprintf(w, "removed %s\n", docID)
	}
	return len(stale), nil
}

func (s *Store) removeRecord(ctx context.Context, docID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ingestRecord(ctx context.Context, docID string, rec types.ProcessedRecord, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (doc_id, source_pdf, total_chunks, file_mod_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET
			source_pdf=excluded.source_pdf, total_chunks=excluded.total_chunks,
			file_mod_time=excluded.file_mod_time`,
		docID, rec.SourcePDF, rec.TotalChunks, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, doc_id, seq, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for seq, content := range rec.Chunks {
		if _, err := stmt.ExecContext(ctx, ChunkID(docID, seq, content), docID, seq, content); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", seq, err)
		}
	}

	return tx.Commit()
}

// ChunkID returns a stable id for the chunk at position seq of a document.
func ChunkID(docID string, seq int, content string) string {
	buf := make([]byte, 0, len(docID)+len(content)+9)
	buf = append(buf, docID...)
	buf = append(buf, 0)
	buf = binary.BigEndian.AppendUint64(buf, uint64(seq))
	buf = append(buf, content...)
	return fmt.Sprintf("%016x", highwayhash.Sum64(buf, hashKey))
}
