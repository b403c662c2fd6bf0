// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/news-engine/internal/classify"
	"github.com/pdiddy/news-engine/internal/cluster"
	"github.com/pdiddy/news-engine/internal/content"
	"github.com/pdiddy/news-engine/internal/corpus"
	"github.com/pdiddy/news-engine/internal/inference"
	"github.com/pdiddy/news-engine/internal/normalize"
	"github.com/pdiddy/news-engine/internal/similarity"
	"github.com/pdiddy/news-engine/pkg/types"
)

const (
	defaultModel     = "llama3"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "news-engine/0.1"
)

// pipelineConfig assembles the full configuration from the config file,
// environment, and flag overrides, in that precedence order.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		AI: types.AIConfig{
			Model:      viper.GetString("ai.model"),
			BaseURL:    viper.GetString("ai.base_url"),
			MaxRetries: viper.GetInt("ai.max_retries"),
		},
		Embedding: types.EmbeddingConfig{
			Model:               viper.GetString("embedding.model"),
			BaseURL:             viper.GetString("embedding.base_url"),
			SimilarityThreshold: viper.GetFloat64("embedding.similarity_threshold"),
		},
		Corpus: types.CorpusConfig{
			DataDir:    viper.GetString("corpus.data_dir"),
			MaxResults: viper.GetInt("corpus.max_results"),
		},
		Acquire: types.AcquireConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("acquire.timeout"),
				UserAgent: viper.GetString("acquire.user_agent"),
			},
			APIKey:     viper.GetString("acquire.api_key"),
			MaxResults: viper.GetInt("acquire.max_results"),
			Interests:  viper.GetStringSlice("acquire.interests"),
		},
	}

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.AI.Model = model
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Corpus.DataDir = dataDir
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel
	}
	if cfg.Acquire.Timeout == 0 {
		cfg.Acquire.Timeout = defaultTimeout
	}
	if cfg.Acquire.UserAgent == "" {
		cfg.Acquire.UserAgent = defaultUserAgent
	}
	cfg.Acquire.APIKey = secretDefault("tavily-api-key", cfg.Acquire.APIKey)
	if cfg.Acquire.APIKey == "" {
		cfg.Acquire.APIKey = os.Getenv("TAVILY_API_KEY")
	}

	return cfg
}

// buildService wires the pipeline stages from config. The caller must
// Close the returned store.
func buildService(cmd *cobra.Command, cfg types.PipelineConfig) (*content.Service, *corpus.Store, error) {
	gen := inference.NewOllamaGenerator(cfg.AI)

	noEmbeddings, _ := cmd.Flags().GetBool("no-embeddings")
	var embedder inference.Embedder
	var engine *similarity.Engine
	if !noEmbeddings {
		emb := inference.NewOllamaEmbedder(cfg.Embedding, cfg.AI)
		embedder = emb
		engine = similarity.NewEngine(emb, cfg.Embedding.SimilarityThreshold, os.Stderr)
	}

	store, err := corpus.NewStore(cfg.Corpus, embedder)
	if err != nil {
		return nil, nil, err
	}

	svc := content.NewService(
		classify.NewClassifier(gen, os.Stderr),
		normalize.NewSummarizer(gen, engine, os.Stderr),
		cluster.NewBuilder(gen, os.Stderr),
		store,
		gen,
		os.Stderr,
	)
	return svc, store, nil
}
