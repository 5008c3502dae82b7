// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the batch job: discover PDFs, then extract, chunk,
// and write a record for each one that has no record yet.
//
// A document whose record already exists is skipped without being read.
// Existence is the only check, so a record is never refreshed when its PDF
// changes; delete the record to force reprocessing.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfchunk/internal/chunker"
	"github.com/pdiddy/pdfchunk/internal/extract"
	"github.com/pdiddy/pdfchunk/internal/record"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

// ErrExtraction marks documents whose text could not be recovered.
var ErrExtraction = errors.New("extraction failure")

// ErrWrite marks documents whose record could not be stored.
var ErrWrite = record.ErrWrite

// Processor applies extract → chunk → write to documents, one at a time.
// Progress lines go to w.
type Processor struct {
	extractor extract.Extractor
	chunker   *chunker.Chunker
	writer    *record.Writer
	w         io.Writer
}

// NewProcessor wires the stages of the pipeline together.
func NewProcessor(ex extract.Extractor, ch *chunker.Chunker, wr *record.Writer, w io.Writer) *Processor {
	return &Processor{extractor: ex, chunker: ch, writer: wr, w: w}
}

// Discover returns the regular files in dir whose names match pattern, in
// the order the filesystem lists them. A missing dir yields no documents.
func Discover(dir, pattern string) ([]types.Document, error) {
	if pattern == "" {
		pattern = types.DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("matching %q in %s: %w", pattern, dir, err)
	}

	docs := make([]types.Document, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		docs = append(docs, types.NewDocument(m))
	}
	return docs, nil
}

// ProcessDocument runs one document to a terminal state. The returned error
// is nil unless the status is StatusFailed, in which case it wraps
// ErrExtraction or ErrWrite.
func (p *Processor) ProcessDocument(doc types.Document) (types.DocumentStatus, error) {
	fmt.Fprintf(p.w, "\nProcessing PDF: %s\n", doc.Path)

	if p.writer.Exists(doc.ID) {
		fmt.Fprintf(p.w, "skipped: %s (output already exists: %s)\n", doc.ID, p.writer.Path(doc.ID))
		return types.StatusSkipped, nil
	}

	fmt.Fprintln(p.w, "Extracting text...")
	text, err := p.extractor.Extract(doc.Path)
	if err == nil && strings.TrimSpace(text) == "" {
		err = extract.ErrNoText
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExtraction, err)
		fmt.Fprintf(p.w, "failed:  %s (%v)\n", doc.ID, err)
		return types.StatusFailed, err
	}

	fmt.Fprintln(p.w, "Chunking text...")
	chunks := p.chunker.Chunk(text)
	fmt.Fprintf(p.w, "Created %d text chunks\n", len(chunks))

	path, err := p.writer.Write(doc, chunks)
	if err != nil {
		fmt.Fprintf(p.w, "failed:  %s (%v)\n", doc.ID, err)
		return types.StatusFailed, err
	}

	fmt.Fprintf(p.w, "completed: %s -> %s\n", doc.ID, path)
	return types.StatusCompleted, nil
}

// ProcessBatch processes docs sequentially, each exactly once. A failure or
// panic in one document is counted and the batch moves on.
func (p *Processor) ProcessBatch(docs []types.Document) types.BatchResult {
	var result types.BatchResult
	for _, doc := range docs {
		status, _ := p.safeProcess(doc)
		result.Add(status)
	}
	printSummary(p.w, result)
	return result
}

// Run discovers documents in dir and processes them. An empty directory is
// not an error: it prints a notice and returns a zero result.
func (p *Processor) Run(dir, pattern string) (types.BatchResult, error) {
	docs, err := Discover(dir, pattern)
	if err != nil {
		return types.BatchResult{}, err
	}
	if len(docs) == 0 {
		fmt.Fprintf(p.w, "No PDF files found in %s directory\n", dir)
		return types.BatchResult{}, nil
	}

	fmt.Fprintf(p.w, "Found %d PDF files to process\n", len(docs))
	return p.ProcessBatch(docs), nil
}

func (p *Processor) safeProcess(doc types.Document) (status types.DocumentStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing %s: panic: %v", doc.Path, r)
			fmt.Fprintf(p.w, "failed:  %s (%v)\n", doc.ID, err)
			status = types.StatusFailed
		}
	}()
	return p.ProcessDocument(doc)
}

func printSummary(w io.Writer, r types.BatchResult) {
	fmt.Fprintln(w, "\nProcessing Summary:")
	fmt.Fprintf(w, "Total PDFs: %d\n", r.Total)
	fmt.Fprintf(w, "Successfully processed: %d\n", r.Succeeded)
	fmt.Fprintf(w, "Failed to process: %d\n", r.Failed)
	fmt.Fprintf(w, "Skipped (already processed): %d\n", r.Skipped)
}
