// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads PDFs in-process with github.com/ledongthuc/pdf.
// Pages are extracted one at a time; pages that fail are skipped.
type NativeExtractor struct{}

// NewNativeExtractor returns a NativeExtractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// Extract returns the text of every readable page, each followed by a
// newline. The PDF parser panics on some malformed inputs; those panics are
// returned as errors.
func (n *NativeExtractor) Extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug("skipping unreadable page", "path", path, "page", i, "err", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return sb.String(), nil
}
