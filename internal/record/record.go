// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record persists processed documents as structured records named
// processed_<id>.<ext> in an output directory. Writes are atomic: a record
// is either fully committed or left untouched.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfchunk/pkg/types"
)

// filePrefix is prepended to the document ID in record file names.
const filePrefix = "processed_"

// ErrWrite marks failures to serialize or store a record.
var ErrWrite = errors.New("write failure")

// Writer stores records for one output directory and format.
type Writer struct {
	dir    string
	format types.RecordFormat
}

// NewWriter returns a Writer for dir. An empty format means JSON.
func NewWriter(dir string, format types.RecordFormat) (*Writer, error) {
	switch format {
	case "":
		format = types.FormatJSON
	case types.FormatJSON, types.FormatYAML:
	default:
		return nil, fmt.Errorf("unknown record format %q: want json or yaml", format)
	}
	return &Writer{dir: dir, format: format}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Path returns the record location for a document ID. The same ID always
// maps to the same path.
func (w *Writer) Path(id string) string {
	return filepath.Join(w.dir, filePrefix+id+"."+string(w.format))
}

// Exists reports whether a record for id is already stored.
func (w *Writer) Exists(id string) bool {
	_, err := os.Stat(w.Path(id))
	return err == nil
}

// Write serializes the record for doc and commits it to Path(doc.ID),
// replacing any previous record. It returns the record path.
func (w *Writer) Write(doc types.Document, chunks []string) (string, error) {
	rec := types.NewProcessedRecord(doc, chunks)
	data, err := encode(rec, w.format)
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", ErrWrite, doc.ID, err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", ErrWrite, w.dir, err)
	}

	// The temp file lives next to the record so the rename never crosses
	// filesystems; renameio removes it on failure.
	path := w.Path(doc.ID)
	if err := renameio.WriteFile(path, data, 0o644, renameio.WithTempDir(w.dir)); err != nil {
		return "", fmt.Errorf("%w: writing %s: %w", ErrWrite, path, err)
	}
	return path, nil
}

func encode(rec types.ProcessedRecord, format types.RecordFormat) ([]byte, error) {
	switch format {
	case types.FormatYAML:
		return yaml.Marshal(&rec)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&rec); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// Read loads a record from path, choosing the decoder by file extension.
func Read(path string) (types.ProcessedRecord, error) {
	var rec types.ProcessedRecord

	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("reading record %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rec)
	case ".json":
		err = json.Unmarshal(data, &rec)
	default:
		return rec, fmt.Errorf("unknown record extension for %s", path)
	}
	if err != nil {
		return rec, fmt.Errorf("parsing record %s: %w", path, err)
	}

	if rec.TotalChunks != len(rec.Chunks) {
		return rec, fmt.Errorf("record %s: total_chunks %d does not match %d chunks",
			path, rec.TotalChunks, len(rec.Chunks))
	}
	return rec, nil
}

// IsRecordFile reports whether name looks like a record file name.
func IsRecordFile(name string) bool {
	if !strings.HasPrefix(name, filePrefix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// IDFromFile returns the document ID encoded in a record file name.
func IDFromFile(name string) string {
	base := filepath.Base(name)
	return strings.TrimPrefix(strings.TrimSuffix(base, filepath.Ext(base)), filePrefix)
}
