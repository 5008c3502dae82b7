// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits text into sentences. The default backend is a punkt
// tokenizer trained on English text; its model is loaded once per process by
// EnsureReady.
package segment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits text into an ordered sequence of sentences. Returned
// sentences are trimmed and never empty.
type Segmenter interface {
	Segment(text string) []string
}

var (
	readyOnce sync.Once
	readyErr  error
	tokenizer *sentences.DefaultSentenceTokenizer
)

// EnsureReady loads the punkt model. It is safe to call any number of times;
// only the first call does work and later calls return the same result.
func EnsureReady() error {
	readyOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			readyErr = fmt.Errorf("loading punkt model: %w", err)
			return
		}
		tokenizer = t
		log.Debug("sentence segmenter ready", "model", "punkt/english")
	})
	return readyErr
}

// Punkt is the Segmenter backed by the shared punkt tokenizer. The zero
// value is ready to use; the model loads on first Segment.
type Punkt struct{}

// NewPunkt returns a punkt Segmenter, loading the model if needed.
func NewPunkt() (*Punkt, error) {
	if err := EnsureReady(); err != nil {
		return nil, err
	}
	return &Punkt{}, nil
}

// Segment tokenizes text into sentences. It returns nil if the model
// cannot be loaded.
func (p *Punkt) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := EnsureReady(); err != nil {
		log.Error("sentence segmenter unavailable", "err", err)
		return nil
	}
	var out []string
	for _, s := range tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
