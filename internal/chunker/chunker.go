// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunker groups sentences into size-bounded chunks. Chunks are
// always made of whole sentences joined by a single space.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/pdfchunk/internal/segment"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

// Chunker holds a segmenter and a soft size threshold.
type Chunker struct {
	seg          segment.Segmenter
	minChunkSize int
}

// New returns a Chunker. A non-positive minChunkSize falls back to
// types.DefaultMinChunkSize.
func New(seg segment.Segmenter, minChunkSize int) *Chunker {
	if minChunkSize <= 0 {
		minChunkSize = types.DefaultMinChunkSize
	}
	return &Chunker{seg: seg, minChunkSize: minChunkSize}
}

// MinChunkSize returns the threshold in characters.
func (c *Chunker) MinChunkSize() int { return c.minChunkSize }

// Chunk splits text into chunks using the configured threshold.
func (c *Chunker) Chunk(text string) []string {
	return Chunk(c.seg, text, c.minChunkSize)
}

// Chunk segments text and accumulates sentences until adding the next one
// would push the running length past minChunkSize, then starts a new chunk.
// The threshold is only checked against a non-empty accumulator, so a
// sentence longer than minChunkSize becomes a chunk of its own and is never
// cut. Lengths are counted in characters. Text with no sentences yields nil.
func Chunk(seg segment.Segmenter, text string, minChunkSize int) []string {
	var (
		chunks  []string
		current []string
		size    int
	)

	for _, sentence := range seg.Segment(text) {
		n := utf8.RuneCountInString(sentence)
		if len(current) > 0 && size+n > minChunkSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			size = 0
		}
		current = append(current, sentence)
		size += n
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
