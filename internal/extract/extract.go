// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers plain text from PDF files with pluggable backends.
package extract

import (
	"errors"
	"fmt"

	"github.com/pdiddy/pdfchunk/internal/container"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

// ErrNoText is returned when a PDF parses but yields no usable text, as with
// scanned or image-only documents.
var ErrNoText = errors.New("no extractable text")

// Extractor returns the full text of the PDF at path. Different backends
// (native, container) implement this interface.
type Extractor interface {
	Extract(path string) (string, error)
}

// New returns the Extractor for backend. The container backend detects a
// docker or podman runtime and checks that the pdftotext image is present.
func New(backend types.ExtractorBackend) (Extractor, error) {
	switch backend {
	case "", types.BackendNative:
		return NewNativeExtractor(), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerExtractor(rt)
	default:
		return nil, fmt.Errorf("unknown extractor backend %q: want native or container", backend)
	}
}
