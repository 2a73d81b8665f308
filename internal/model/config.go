package model

import "time"

// Config is the complete graphaudit configuration.
type Config struct {
	Paths       PathsConfig      `yaml:"paths" mapstructure:"paths"`
	OCR         OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Validation  ValidationConfig `yaml:"validation" mapstructure:"validation"`
	LLM         LLMConfig        `yaml:"llm" mapstructure:"llm"`
	NLI         NLIConfig        `yaml:"nli" mapstructure:"nli"`
	Cache       CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcConfig       `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig     `yaml:"output" mapstructure:"output"`
}

// PathsConfig holds the pipeline directory layout.
type PathsConfig struct {
	InputPDFDir      string `yaml:"input_pdf_dir" mapstructure:"input_pdf_dir"`
	ProcessedTextDir string `yaml:"processed_text_dir" mapstructure:"processed_text_dir"`
	GraphragDir      string `yaml:"graphrag_dir" mapstructure:"graphrag_dir"`
	CacheDir         string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// OCRConfig configures the Stirling PDF service client.
type OCRConfig struct {
	StirlingURL string        `yaml:"stirling_url" mapstructure:"stirling_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Languages   []string      `yaml:"languages" mapstructure:"languages"`
	CleanText   bool          `yaml:"clean_text" mapstructure:"clean_text"`
	HTTPProxy   string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy     string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ValidationConfig holds the scorer decision constants. The thresholds are
// tuned heuristics, not derived values, so they stay configurable rather
// than hard-coded.
type ValidationConfig struct {
	// NLIThreshold flags an entity when mean unsupported-ness exceeds it.
	NLIThreshold float64 `yaml:"nli_threshold" mapstructure:"nli_threshold"`
	// CoverageLow and CoverageHigh bound the hybrid scorer's uncertain band.
	CoverageLow  float64 `yaml:"coverage_low" mapstructure:"coverage_low"`
	CoverageHigh float64 `yaml:"coverage_high" mapstructure:"coverage_high"`
	// MaxSourceTexts caps how many fragments are sent to a model per entity.
	MaxSourceTexts int `yaml:"max_source_texts" mapstructure:"max_source_texts"`
	// MaxSourceChars truncates each fragment before NLI inference.
	MaxSourceChars int `yaml:"max_source_chars" mapstructure:"max_source_chars"`
	// MinSentenceLen drops description fragments too short to carry a claim.
	MinSentenceLen int `yaml:"min_sentence_len" mapstructure:"min_sentence_len"`
	// CheckpointEvery persists accumulated results every N successes.
	CheckpointEvery int `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// LLMConfig configures the remote completion provider.
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"`
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"-" mapstructure:"-"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// NLIConfig configures the local entailment model.
type NLIConfig struct {
	ModelName string `yaml:"model_name" mapstructure:"model_name"`
	ModelDir  string `yaml:"model_dir" mapstructure:"model_dir"`
}

// CacheConfig configures OCR result caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcConfig configures pipeline-stage concurrency. Validation itself is
// always sequential; only PDF extraction fans out.
type ConcConfig struct {
	ExtractWorkers int `yaml:"extract_workers" mapstructure:"extract_workers"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputPDFDir:      "./input",
			ProcessedTextDir: "./processed_text",
			GraphragDir:      "./graphrag_output",
			CacheDir:         "validation_cache",
		},
		OCR: OCRConfig{
			StirlingURL: "http://localhost:8081",
			Timeout:     5 * time.Minute,
			Languages:   []string{"eng"},
			CleanText:   true,
		},
		Validation: ValidationConfig{
			NLIThreshold:    0.5,
			CoverageLow:     0.3,
			CoverageHigh:    0.7,
			MaxSourceTexts:  3,
			MaxSourceChars:  1000,
			MinSentenceLen:  10,
			CheckpointEvery: 10,
		},
		LLM: LLMConfig{
			Provider:          "groq",
			Model:             "llama-3.3-70b-versatile",
			Timeout:           30,
			MaxTokens:         500,
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		NLI: NLIConfig{
			ModelName: "cross-encoder/nli-deberta-v3-base",
			ModelDir:  "./models",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".graphaudit-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcConfig{
			ExtractWorkers: 2,
		},
		Output: OutputConfig{},
	}
}
