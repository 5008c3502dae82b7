// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfchunk CLI. The process
// command turns a directory of PDFs into chunked records; index and
// search load those records into a full-text index and query it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfchunk/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the pdfchunk CLI.
var rootCmd = &cobra.Command{
	Use:   "pdfchunk",
	Short: "Turn a directory of PDFs into sentence-aligned text chunks",
	Long: `pdfchunk extracts text from every PDF in an input directory, splits it
into sentences, and groups the sentences into chunks of at least a minimum
character length. Each PDF produces one record file in the output directory.

Documents that already have a record are skipped, so re-running after adding
new PDFs only processes the new ones.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log_level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfchunk.yaml or ~/.config/pdfchunk/pdfchunk.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfchunk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfchunk"))
		}
	}

	viper.SetEnvPrefix("PDFCHUNK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging points the default diagnostic logger at stderr so stdout
// carries only progress and results.
func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "pdfchunk",
	}))
	return nil
}

// loadConfig reads every stage's settings from viper, which merges flags,
// PDFCHUNK_* environment variables, and the config file.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Process: types.ProcessConfig{
			InputDir:     viper.GetString("process.input_dir"),
			Pattern:      viper.GetString("process.pattern"),
			OutputDir:    viper.GetString("process.output_dir"),
			MinChunkSize: viper.GetInt("process.min_chunk_size"),
			Format:       types.RecordFormat(viper.GetString("process.format")),
			Backend:      types.ExtractorBackend(viper.GetString("process.backend")),
		}.WithDefaults(),
		Index: types.IndexConfig{
			DBPath:     viper.GetString("index.db_path"),
			MaxResults: viper.GetInt("index.max_results"),
		},
	}
}

// bindFlags returns a PreRunE that binds the running command's flags to
// viper keys. Binding at run time lets several commands share a key.
func bindFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for key, flag := range keys {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("binding --%s to %s: %w", flag, key, err)
			}
		}
		return nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
