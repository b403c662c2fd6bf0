package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "news-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the text-generation API.
type AIConfig struct {
	// Model is the generation model identifier (e.g. "llama3").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the inference server base URL (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxRetries is the number of retry attempts for transient API failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig holds settings for the embedding backend.
type EmbeddingConfig struct {
	// Model is the embedding model identifier. Empty falls back to AIConfig.Model.
	Model string `json:"model" yaml:"model"`

	// BaseURL is the embedding server base URL. Empty falls back to AIConfig.BaseURL.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// SimilarityThreshold is the cosine-similarity cutoff for relating two
	// articles (default 0.75).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
}

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// DataDir is the base directory for persisted state (contains corpus.db).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AcquireConfig holds settings for the web-search acquisition stage.
type AcquireConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the web-search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the number of articles requested per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Interests lists user interest tags fetched alongside top headlines.
	Interests []string `json:"interests" yaml:"interests"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	Acquire   AcquireConfig   `json:"acquire" yaml:"acquire"`
}
