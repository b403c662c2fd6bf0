// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference provides the text-generation and embedding collaborators
// used by the pipeline. Both are single bounded request-response calls with
// no internal retry loop beyond the shared transient-failure policy; a
// failure surfaces immediately to the caller's fallback logic.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/news-engine/internal/httputil"
	"github.com/pdiddy/news-engine/pkg/types"
)

// Generator abstracts the text-generation API so tests can supply a mock.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder abstracts the embedding API. Implementations return one vector
// per input text, in input order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

const defaultBaseURL = "http://localhost:11434"

// OllamaGenerator calls an Ollama-compatible /api/generate endpoint.
type OllamaGenerator struct {
	Model      string
	BaseURL    string
	MaxRetries int
	Client     *http.Client
}

// NewOllamaGenerator builds a generator from config, applying defaults.
func NewOllamaGenerator(cfg types.AIConfig) *OllamaGenerator {
	return &OllamaGenerator{
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// generateRequest is the request body for the generate endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the response body from the generate endpoint.
type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one completion request and returns the model's response text.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := g.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generate API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	if gr.Response == "" {
		return "", fmt.Errorf("generate API returned empty response")
	}
	return gr.Response, nil
}

func (g *OllamaGenerator) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	base := g.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, g.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	return resp, nil
}

// OllamaEmbedder calls an Ollama-compatible /api/embed endpoint with
// batched inputs.
type OllamaEmbedder struct {
	Model      string
	BaseURL    string
	MaxRetries int
	Client     *http.Client
}

// NewOllamaEmbedder builds an embedder from config. Embedding settings fall
// back to the generation model and base URL when unset.
func NewOllamaEmbedder(cfg types.EmbeddingConfig, ai types.AIConfig) *OllamaEmbedder {
	model := cfg.Model
	if model == "" {
		model = ai.Model
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ai.BaseURL
	}
	return &OllamaEmbedder{
		Model:      model,
		BaseURL:    baseURL,
		MaxRetries: ai.MaxRetries,
		Client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// embedRequest is the request body for the embed endpoint.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse is the response body from the embed endpoint.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// EmbedDocuments embeds all texts in one batched call and returns one
// vector per text, in input order.
func (e *OllamaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	base := e.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, e.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling /api/embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(er.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed API returned %d vectors for %d inputs", len(er.Embeddings), len(texts))
	}
	return er.Embeddings, nil
}
