// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfchunk/internal/chunker"
	"github.com/pdiddy/pdfchunk/internal/extract"
	"github.com/pdiddy/pdfchunk/internal/pipeline"
	"github.com/pdiddy/pdfchunk/internal/record"
	"github.com/pdiddy/pdfchunk/internal/segment"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract, segment, and chunk every PDF in the input directory",
	Long: `Process scans the input directory for files matching the pattern,
extracts each PDF's text, splits it into sentences, and groups sentences into
chunks of at least --min-chunk-size characters. Each PDF gets one record,
processed_<name>.json (or .yaml), in the output directory.

PDFs whose record already exists are skipped. A PDF that fails is reported
and counted; the batch continues with the next file.`,
	PreRunE: bindFlags(map[string]string{
		"process.input_dir":      "input-dir",
		"process.pattern":        "pattern",
		"process.output_dir":     "output-dir",
		"process.min_chunk_size": "min-chunk-size",
		"process.format":         "format",
		"process.backend":        "backend",
	}),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Process

	seg, err := segment.NewPunkt()
	if err != nil {
		return err
	}

	ex, err := extract.New(cfg.Backend)
	if err != nil {
		return err
	}
	wr, err := record.NewWriter(cfg.OutputDir, cfg.Format)
	if err != nil {
		return err
	}

	log.Debug("processing", "input", cfg.InputDir, "pattern", cfg.Pattern,
		"output", cfg.OutputDir, "min_chunk_size", cfg.MinChunkSize,
		"format", cfg.Format, "backend", cfg.Backend)

	proc := pipeline.NewProcessor(ex, chunker.New(seg, cfg.MinChunkSize), wr, os.Stdout)
	result, err := proc.Run(cfg.InputDir, cfg.Pattern)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		log.Warn("some PDFs failed to process", "failed", result.Failed, "total", result.Total)
	}
	return nil
}

func init() {
	processCmd.Flags().String("input-dir", "PDF", "directory scanned for PDFs")
	processCmd.Flags().String("pattern", "*.pdf", "glob matched against file names in the input directory")
	processCmd.Flags().String("output-dir", "output", "directory receiving processed records")
	processCmd.Flags().Int("min-chunk-size", 200, "minimum characters before a chunk is closed")
	processCmd.Flags().String("format", "json", "record format: json or yaml")
	processCmd.Flags().String("backend", "native", "text extraction backend: native or container")

	rootCmd.AddCommand(processCmd)
}
