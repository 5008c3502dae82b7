// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/pdfchunk/internal/container"
)

const imagePdftotext = "pdftotext:latest"

// pdftotext reads the PDF from stdin and writes text to stdout.
var pdftotextArgs = []string{"-enc", "UTF-8", "-", "-"}

// ContainerExtractor converts PDFs by piping them through the pdftotext
// container image on a docker or podman runtime.
type ContainerExtractor struct {
	runtime container.Runtime
}

// NewContainerExtractor verifies the pdftotext image exists in rt before
// returning an extractor bound to it.
func NewContainerExtractor(rt container.Runtime) (*ContainerExtractor, error) {
	if err := rt.ImageExists(imagePdftotext); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerExtractor{runtime: rt}, nil
}

// Extract pipes the PDF at path through pdftotext and returns its output.
func (c *ContainerExtractor) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(imagePdftotext, pdftotextArgs, f, &out); err != nil {
		return "", fmt.Errorf("extracting %s with pdftotext: %w", path, err)
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return out.String(), nil
}
