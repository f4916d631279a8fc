package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/notesai/notesai/internal/chunker"
	"github.com/notesai/notesai/internal/pdftext"
)

// ErrNilConfig is returned when a nil Config is provided.
var ErrNilConfig = errors.New("config is nil")

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// ErrLLMNotConfigured is returned when a command needs the analysis provider
// but no API key was set.
var ErrLLMNotConfigured = errors.New("llm provider is not configured")

// Config holds the full application configuration.
type Config struct {
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	LLM        ProviderConfig   `mapstructure:"llm"`
	Embedder   EmbedderConfig   `mapstructure:"embedder"`
	Library    LibraryConfig    `mapstructure:"library"`
}

// ExtractionConfig holds the extractor heuristics plus the caller-side limits
// around each Parse call.
type ExtractionConfig struct {
	pdftext.Options `mapstructure:",squash"`

	// Timeout bounds a single extraction. 0 disables the deadline.
	Timeout time.Duration `mapstructure:"timeout"`
	// Workers is the number of files extracted in parallel.
	Workers int `mapstructure:"workers"`
}

// LogConfig selects the structured log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// ProviderConfig holds connection details for the OpenAI-compatible provider
// used for notes analysis.
type ProviderConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// Enabled reports whether an API key is present.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// EmbedderConfig selects how note passages are embedded for question
// answering. Without an API key a local hashed bag-of-words embedding of
// Dimensions components is used.
type EmbedderConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// Remote reports whether an embeddings API is configured.
func (e EmbedderConfig) Remote() bool {
	return e.APIKey != ""
}

// LibraryConfig holds the settings of the in-memory notes library behind
// question answering and the topic flowchart.
type LibraryConfig struct {
	Chunk chunker.Options `mapstructure:"chunk"`
	// TopK is the number of passages offered as context for a question.
	TopK int `mapstructure:"top_k"`
}

// RegisterDefaults seeds every known key so that env-only setups resolve
// through AutomaticEnv.
func RegisterDefaults(v *viper.Viper) {
	opts := pdftext.DefaultOptions()
	v.SetDefault("extraction.max_text_length", opts.MaxTextLength)
	v.SetDefault("extraction.min_readable_length", opts.MinReadableLength)
	v.SetDefault("extraction.min_letter_ratio", opts.MinLetterRatio)
	v.SetDefault("extraction.min_run_length", opts.MinRunLength)
	v.SetDefault("extraction.min_run_printable", opts.MinRunPrintable)
	v.SetDefault("extraction.pattern_window_bytes", opts.PatternWindow)
	v.SetDefault("extraction.literal_search_limit", opts.LiteralSearchLimit)
	v.SetDefault("extraction.normalize_interval", opts.NormalizeInterval)
	v.SetDefault("extraction.timeout", 30*time.Second)
	v.SetDefault("extraction.workers", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("llm.base_url", "https://api.perplexity.ai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "sonar-pro")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1024)

	v.SetDefault("embedder.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedder.api_key", "")
	v.SetDefault("embedder.model", "text-embedding-3-small")
	v.SetDefault("embedder.dimensions", 512)

	chunk := chunker.DefaultOptions()
	v.SetDefault("library.chunk.size", chunk.Size)
	v.SetDefault("library.chunk.overlap", chunk.Overlap)
	v.SetDefault("library.top_k", 5)
}

// Load reads the Viper-populated config into a Config struct and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command relies on.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := cfg.Extraction.Options.Validate(); err != nil {
		return fmt.Errorf("%w: extraction: %w", ErrInvalidConfig, err)
	}
	if cfg.Extraction.Timeout < 0 {
		return fmt.Errorf("%w: extraction.timeout must not be negative", ErrInvalidConfig)
	}
	if cfg.Extraction.Workers <= 0 {
		return fmt.Errorf("%w: extraction.workers must be greater than 0", ErrInvalidConfig)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, cfg.Log.Format)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d is out of range", ErrInvalidConfig, cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.max_upload_bytes must be greater than 0", ErrInvalidConfig)
	}

	if cfg.Embedder.Dimensions < 0 {
		return fmt.Errorf("%w: embedder.dimensions must not be negative", ErrInvalidConfig)
	}
	if cfg.Library.Chunk.Size <= 0 {
		return fmt.Errorf("%w: library.chunk.size must be greater than 0", ErrInvalidConfig)
	}
	if cfg.Library.TopK <= 0 {
		return fmt.Errorf("%w: library.top_k must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

// ValidateLLM checks the provider settings needed for analysis.
func ValidateLLM(p ProviderConfig) error {
	if !p.Enabled() {
		return fmt.Errorf("%w: set llm.api_key or LLM_API_KEY", ErrLLMNotConfigured)
	}
	if p.BaseURL == "" {
		return fmt.Errorf("%w: llm.base_url is required", ErrInvalidConfig)
	}
	if p.Model == "" {
		return fmt.Errorf("%w: llm.model is required", ErrInvalidConfig)
	}
	return nil
}
