// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfchunk/internal/index"
	"github.com/pdiddy/pdfchunk/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load processed records into the full-text chunk index",
	Long: `Index reads every processed_<id> record in the output directory and
loads its chunks into a SQLite database with FTS5 indexing. Records that have
not changed since the last run are skipped; rewritten records replace their
old chunks.`,
	PreRunE: bindFlags(map[string]string{
		"index.db_path":      "db",
		"process.output_dir": "output-dir",
	}),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), cfg.Process.OutputDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write indexed chunks to stdout as JSON or YAML",
	Long: `Export prints every indexed chunk, or only those of one document with
--doc, including chunk ids and source PDF paths.`,
	PreRunE: bindFlags(map[string]string{"index.db_path": "db"}),
	RunE:    runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	docID, _ := cmd.Flags().GetString("doc")

	store, err := index.Open(loadConfig().Index)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Export(context.Background(), os.Stdout, types.RecordFormat(format), docID)
}

func init() {
	indexCmd.PersistentFlags().String("db", "output/index/chunks.db", "SQLite index database path")
	indexCmd.Flags().String("output-dir", "output", "directory containing processed records")

	indexExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	indexExportCmd.Flags().String("doc", "", "export only this document id")

	indexCmd.AddCommand(indexExportCmd)
	rootCmd.AddCommand(indexCmd)
}
