// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/pdiddy/pdfchunk/internal/chunker"
	"github.com/pdiddy/pdfchunk/internal/extract"
	"github.com/pdiddy/pdfchunk/internal/record"
	"github.com/pdiddy/pdfchunk/internal/segment"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

// fakeExtractor returns canned text or an error per path, and counts calls.
type fakeExtractor struct {
	outputs map[string]string
	errors  map[string]error
	panics  map[string]bool
	calls   int
}

func (f *fakeExtractor) Extract(path string) (string, error) {
	f.calls++
	if f.panics[path] {
		panic("corrupt xref table")
	}
	if err, ok := f.errors[path]; ok {
		return "", err
	}
	if out, ok := f.outputs[path]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + path)
}

// periodSegmenter splits after every period.
type periodSegmenter struct{}

func (periodSegmenter) Segment(text string) []string {
	var out []string
	for _, s := range strings.SplitAfter(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// setupDirs creates PDF/ with the named fake PDFs and returns the temp root.
func setupDirs(t *testing.T, names ...string) (inputDir, outputDir string) {
	t.Helper()
	root := t.TempDir()
	inputDir = filepath.Join(root, "PDF")
	outputDir = filepath.Join(root, "output")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte("fake pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return inputDir, outputDir
}

func newProcessor(t *testing.T, ex extract.Extractor, outputDir string, log *bytes.Buffer) *Processor {
	t.Helper()
	wr, err := record.NewWriter(outputDir, types.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return NewProcessor(ex, chunker.New(periodSegmenter{}, 10), wr, log)
}

func TestProcessDocument(t *testing.T) {
	tests := []struct {
		name       string
		extractor  *fakeExtractor
		preCreate  bool // create the record before running
		blockOut   bool // make the output dir unusable
		wantStatus types.DocumentStatus
		wantErr    error
		wantLog    string
		wantRecord bool
	}{
		{
			name:       "successful processing",
			extractor:  &fakeExtractor{outputs: map[string]string{"a.pdf": "One. Two. Three."}},
			wantStatus: types.StatusCompleted,
			wantLog:    "completed:",
			wantRecord: true,
		},
		{
			name:       "skip existing record",
			extractor:  &fakeExtractor{},
			preCreate:  true,
			wantStatus: types.StatusSkipped,
			wantLog:    "skipped:",
			wantRecord: true,
		},
		{
			name:       "extraction failure",
			extractor:  &fakeExtractor{errors: map[string]error{"a.pdf": errors.New("corrupt pdf")}},
			wantStatus: types.StatusFailed,
			wantErr:    ErrExtraction,
			wantLog:    "failed:",
		},
		{
			name:       "blank text is an extraction failure",
			extractor:  &fakeExtractor{outputs: map[string]string{"a.pdf": " \n\n "}},
			wantStatus: types.StatusFailed,
			wantErr:    ErrExtraction,
			wantLog:    "failed:",
		},
		{
			name:       "write failure",
			extractor:  &fakeExtractor{outputs: map[string]string{"a.pdf": "One."}},
			blockOut:   true,
			wantStatus: types.StatusFailed,
			wantErr:    ErrWrite,
			wantLog:    "failed:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputDir, outputDir := setupDirs(t, "a.pdf")
			pdfPath := filepath.Join(inputDir, "a.pdf")

			// Key the fake by the full path used at runtime.
			remap(tt.extractor, "a.pdf", pdfPath)

			if tt.preCreate {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(outputDir, "processed_a.json"), []byte("{}"), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if tt.blockOut {
				if err := os.WriteFile(outputDir, []byte("file"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var log bytes.Buffer
			p := newProcessor(t, tt.extractor, outputDir, &log)
			status, err := p.ProcessDocument(types.NewDocument(pdfPath))

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
			if tt.preCreate && tt.extractor.calls != 0 {
				t.Errorf("extractor called %d times for skipped document", tt.extractor.calls)
			}

			_, statErr := os.Stat(filepath.Join(outputDir, "processed_a.json"))
			if gotRecord := statErr == nil; gotRecord != tt.wantRecord {
				t.Errorf("record exists = %v, want %v", gotRecord, tt.wantRecord)
			}
		})
	}
}

func TestProcessDocument_RecordContents(t *testing.T) {
	inputDir, outputDir := setupDirs(t, "paper.pdf")
	pdfPath := filepath.Join(inputDir, "paper.pdf")
	ex := &fakeExtractor{outputs: map[string]string{pdfPath: "One. Two. Three."}}

	var log bytes.Buffer
	p := NewProcessor(ex, chunker.New(periodSegmenter{}, 3), mustWriter(t, outputDir), &log)
	if status, err := p.ProcessDocument(types.NewDocument(pdfPath)); status != types.StatusCompleted {
		t.Fatalf("status = %q (%v)", status, err)
	}

	rec, err := record.Read(filepath.Join(outputDir, "processed_paper.json"))
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	want := []string{"One.", "Two.", "Three."}
	if strings.Join(rec.Chunks, "|") != strings.Join(want, "|") {
		t.Errorf("chunks = %q, want %q", rec.Chunks, want)
	}
	if rec.TotalChunks != 3 {
		t.Errorf("total_chunks = %d, want 3", rec.TotalChunks)
	}
	if rec.SourcePDF != pdfPath {
		t.Errorf("source_pdf = %q, want %q", rec.SourcePDF, pdfPath)
	}
}

func TestRun(t *testing.T) {
	inputDir, outputDir := setupDirs(t, "a.pdf", "b.pdf", "c.pdf", "notes.txt")

	// Pre-create output for "b" to trigger skip.
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "processed_b.json"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	ex := &fakeExtractor{
		outputs: map[string]string{
			filepath.Join(inputDir, "a.pdf"): "Paper A. Has text.",
			filepath.Join(inputDir, "b.pdf"): "Paper B.",
		},
		errors: map[string]error{
			filepath.Join(inputDir, "c.pdf"): errors.New("bad pdf"),
		},
	}

	var log bytes.Buffer
	result, err := newProcessor(t, ex, outputDir, &log).Run(inputDir, "*.pdf")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := types.BatchResult{Total: 3, Succeeded: 1, Failed: 1, Skipped: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if ex.calls != 2 {
		t.Errorf("extractor calls = %d, want 2", ex.calls)
	}

	output := log.String()
	for _, s := range []string{"Found 3 PDF files", "Processing Summary:", "Total PDFs: 3", "Skipped (already processed): 1"} {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q:\n%s", s, output)
		}
	}
	if _, err := os.Stat(filepath.Join(outputDir, "processed_c.json")); !os.IsNotExist(err) {
		t.Errorf("failed document left a record: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	inputDir, outputDir := setupDirs(t, "a.pdf", "b.pdf")
	ex := &fakeExtractor{outputs: map[string]string{
		filepath.Join(inputDir, "a.pdf"): "Alpha one. Alpha two.",
		filepath.Join(inputDir, "b.pdf"): "Beta one. Beta two. Beta three.",
	}}

	var log bytes.Buffer
	p := newProcessor(t, ex, outputDir, &log)

	first, err := p.Run(inputDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Succeeded != 2 || first.Total != 2 {
		t.Fatalf("first run = %+v", first)
	}
	before := readDir(t, outputDir)

	second, err := p.Run(inputDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Skipped != second.Total || second.Succeeded != 0 || second.Total != 2 {
		t.Errorf("second run = %+v, want all skipped", second)
	}
	if ex.calls != 2 {
		t.Errorf("extractor calls = %d, want 2 (none on second run)", ex.calls)
	}

	after := readDir(t, outputDir)
	if len(before) != len(after) {
		t.Fatalf("record count changed: %d -> %d", len(before), len(after))
	}
	for name, data := range before {
		if after[name] != data {
			t.Errorf("record %s changed on second run", name)
		}
	}
}

func TestRun_EmptyAndMissingDirectory(t *testing.T) {
	inputDir, outputDir := setupDirs(t)

	for _, dir := range []string{inputDir, filepath.Join(inputDir, "does-not-exist")} {
		var log bytes.Buffer
		result, err := newProcessor(t, &fakeExtractor{}, outputDir, &log).Run(dir, "*.pdf")
		if err != nil {
			t.Fatalf("Run(%s): %v", dir, err)
		}
		if result.Total != 0 {
			t.Errorf("total = %d, want 0", result.Total)
		}
		if !strings.Contains(log.String(), "No PDF files found in") {
			t.Errorf("missing notice in %q", log.String())
		}
		if strings.Contains(log.String(), "Processing Summary") {
			t.Error("empty run should not print a summary")
		}
	}
}

func TestProcessBatch_PanicIsolated(t *testing.T) {
	inputDir, outputDir := setupDirs(t, "a.pdf", "b.pdf")
	a, b := filepath.Join(inputDir, "a.pdf"), filepath.Join(inputDir, "b.pdf")
	ex := &fakeExtractor{
		outputs: map[string]string{b: "Fine text."},
		panics:  map[string]bool{a: true},
	}

	var log bytes.Buffer
	result := newProcessor(t, ex, outputDir, &log).ProcessBatch([]types.Document{
		types.NewDocument(a), types.NewDocument(b),
	})

	want := types.BatchResult{Total: 2, Succeeded: 1, Failed: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
	if !strings.Contains(log.String(), "panic: corrupt xref table") {
		t.Errorf("panic not reported: %s", log.String())
	}
}

func TestDiscover(t *testing.T) {
	inputDir, _ := setupDirs(t, "a.pdf", "b.pdf", "c.txt")
	if err := os.Mkdir(filepath.Join(inputDir, "dir.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := Discover(inputDir, "*.pdf")
	if err != nil {
		t.Fatal(err)
	}
	ids := map[string]bool{}
	for _, d := range docs {
		ids[d.ID] = true
	}
	if len(docs) != 2 || !ids["a"] || !ids["b"] {
		t.Errorf("discovered %+v, want a and b", docs)
	}

	if _, err := Discover(inputDir, "[bad"); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	inputDir, outputDir := setupDirs(t)
	writePDF(t, filepath.Join(inputDir, "story.pdf"),
		"The cat sat on the mat. The dog barked loudly. Birds were singing outside.")
	if err := os.WriteFile(filepath.Join(inputDir, "broken.pdf"), []byte("not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	seg, err := segment.NewPunkt()
	if err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	p := NewProcessor(extract.NewNativeExtractor(), chunker.New(seg, 30), mustWriter(t, outputDir), &log)
	result, err := p.Run(inputDir, "*.pdf")
	if err != nil {
		t.Fatal(err)
	}

	want := types.BatchResult{Total: 2, Succeeded: 1, Failed: 1}
	if result != want {
		t.Fatalf("result = %+v, want %+v\n%s", result, want, log.String())
	}

	rec, err := record.Read(filepath.Join(outputDir, "processed_story.json"))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(rec.Chunks, " ")
	for _, s := range []string{"The cat sat on the mat.", "The dog barked loudly.", "Birds were singing outside."} {
		if !strings.Contains(joined, s) {
			t.Errorf("chunks %q missing sentence %q", rec.Chunks, s)
		}
	}
	if rec.TotalChunks != len(rec.Chunks) || rec.TotalChunks < 2 {
		t.Errorf("total_chunks = %d for %q", rec.TotalChunks, rec.Chunks)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "processed_broken.json")); !os.IsNotExist(err) {
		t.Error("broken PDF should not produce a record")
	}
}

func remap(f *fakeExtractor, from, to string) {
	if out, ok := f.outputs[from]; ok {
		delete(f.outputs, from)
		f.outputs[to] = out
	}
	if err, ok := f.errors[from]; ok {
		delete(f.errors, from)
		f.errors[to] = err
	}
}

func mustWriter(t *testing.T, dir string) *record.Writer {
	t.Helper()
	wr, err := record.NewWriter(dir, types.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return wr
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		out[e.Name()] = string(data)
	}
	return out
}

func writePDF(t *testing.T, path, text string) {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()
	doc.Cell(0, 10, text)
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}
}
