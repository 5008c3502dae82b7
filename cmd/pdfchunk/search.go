// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfchunk/internal/index"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over indexed chunks",
	Long: `Search queries the chunk index built by "pdfchunk index" using FTS5
match syntax. Results are ranked best first and show the chunk's document,
position, and text. Use --doc to restrict the search to one document.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: bindFlags(map[string]string{
		"index.db_path":     "db",
		"index.max_results": "max-results",
	}),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	docID, _ := cmd.Flags().GetString("doc")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := index.Open(loadConfig().Index)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(context.Background(), index.SearchOptions{
		Query: strings.Join(args, " "),
		DocID: docID,
	})
	if err != nil {
		return err
	}
	return formatSearchOutput(os.Stdout, results, jsonOutput)
}

func formatSearchOutput(w io.Writer, results []index.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []index.SearchResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-5s  %s\n", "Rank", "Document", "Chunk", "Content")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-20s  %-5d  %s\n",
			i+1, truncate(r.DocID, 20), r.Seq, truncate(strings.Join(strings.Fields(r.Content), " "), 64))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	searchCmd.Flags().String("db", "output/index/chunks.db", "SQLite index database path")
	searchCmd.Flags().Int("max-results", 20, "maximum number of results")
	searchCmd.Flags().String("doc", "", "restrict results to one document id")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
