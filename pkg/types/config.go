package types

// RecordFormat selects the serialization of processed records.
type RecordFormat string

const (
	FormatJSON RecordFormat = "json"
	FormatYAML RecordFormat = "yaml"
)

// ExtractorBackend identifies the PDF text extraction tool.
type ExtractorBackend string

const (
	// BackendNative extracts text in-process with a pure Go PDF reader.
	BackendNative ExtractorBackend = "native"

	// BackendContainer pipes the PDF through a pdftotext container image.
	BackendContainer ExtractorBackend = "container"
)

// Defaults applied when a config value is empty or non-positive.
const (
	DefaultInputDir     = "PDF"
	DefaultPattern      = "*.pdf"
	DefaultOutputDir    = "output"
	DefaultMinChunkSize = 200
	DefaultIndexDB      = "output/index/chunks.db"
	DefaultMaxResults   = 20
)

// ProcessConfig holds settings for the process stage.
type ProcessConfig struct {
	// InputDir is the directory scanned for PDFs (default "PDF").
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// Pattern is the glob matched against file names in InputDir (default "*.pdf").
	Pattern string `json:"pattern" yaml:"pattern"`

	// OutputDir receives processed_<id>.<ext> records (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MinChunkSize is the soft character threshold for closing a chunk (default 200).
	MinChunkSize int `json:"min_chunk_size" yaml:"min_chunk_size"`

	// Format selects the record encoding: json or yaml.
	Format RecordFormat `json:"format" yaml:"format"`

	// Backend selects the extractor: native or container.
	Backend ExtractorBackend `json:"backend" yaml:"backend"`
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c ProcessConfig) WithDefaults() ProcessConfig {
	if c.InputDir == "" {
		c.InputDir = DefaultInputDir
	}
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MinChunkSize <= 0 {
		c.MinChunkSize = DefaultMinChunkSize
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Backend == "" {
		c.Backend = BackendNative
	}
	return c
}

// IndexConfig holds settings for the chunk index.
type IndexConfig struct {
	// DBPath is the SQLite database file (default "output/index/chunks.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Process ProcessConfig `json:"process" yaml:"process"`
	Index   IndexConfig   `json:"index" yaml:"index"`
}
