// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// DocumentStatus is the terminal state of a document in a batch run.
type DocumentStatus string

const (
	StatusSkipped   DocumentStatus = "skipped"
	StatusCompleted DocumentStatus = "completed"
	StatusFailed    DocumentStatus = "failed"
)

// Document is an input PDF discovered on disk.
type Document struct {
	// ID is the base name of the file without its extension (e.g. "report"
	// for "PDF/report.pdf"). Output records are named after it.
	ID string `json:"id" yaml:"id"`

	// Path is the filesystem path of the PDF as discovered.
	Path string `json:"path" yaml:"path"`
}

// NewDocument builds a Document from a path, deriving its ID.
func NewDocument(path string) Document {
	return Document{
		ID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}
}

// ProcessedRecord is the persisted output for one document. Field order is
// the key order of the serialized record.
type ProcessedRecord struct {
	// SourcePDF is the input path string the record was built from.
	SourcePDF string `json:"source_pdf" yaml:"source_pdf"`

	// Chunks holds the chunk strings in source order.
	Chunks []string `json:"chunks" yaml:"chunks"`

	// TotalChunks always equals len(Chunks).
	TotalChunks int `json:"total_chunks" yaml:"total_chunks"`
}

// NewProcessedRecord builds a record for doc. A nil chunks slice is stored
// as an empty list so the serialized form is always an array.
func NewProcessedRecord(doc Document, chunks []string) ProcessedRecord {
	if chunks == nil {
		chunks = []string{}
	}
	return ProcessedRecord{
		SourcePDF:   doc.Path,
		Chunks:      chunks,
		TotalChunks: len(chunks),
	}
}

// BatchResult holds the outcome counts of a batch run.
type BatchResult struct {
	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
	Skipped   int `json:"skipped" yaml:"skipped"`
}

// Add counts one document in the given terminal state.
func (r *BatchResult) Add(status DocumentStatus) {
	r.Total++
	switch status {
	case StatusCompleted:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// HasFailures reports whether any document failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}
