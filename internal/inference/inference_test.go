// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerator_Generate(t *testing.T) {
	var gotReq generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"response": "financial"}`)
	}))
	defer ts.Close()

	g := &OllamaGenerator{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	out, err := g.Generate(context.Background(), "categorize this")
	require.NoError(t, err)
	assert.Equal(t, "financial", out)
	assert.Equal(t, "llama3", gotReq.Model)
	assert.Equal(t, "categorize this", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
}

func TestOllamaGenerator_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	g := &OllamaGenerator{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaGenerator_EmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response": ""}`)
	}))
	defer ts.Close()

	g := &OllamaGenerator{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	_, err := g.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestOllamaEmbedder_BatchOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)
		fmt.Fprint(w, `{"embeddings": [[1, 0], [0, 1]]}`)
	}))
	defer ts.Close()

	e := &OllamaEmbedder{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	vecs, err := e.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{1, 0}, vecs[0])
	assert.Equal(t, []float64{0, 1}, vecs[1])
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"embeddings": [[1, 0]]}`)
	}))
	defer ts.Close()

	e := &OllamaEmbedder{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	_, err := e.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 vectors for 2 inputs")
}

func TestOllamaEmbedder_EmptyInputNoCall(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer ts.Close()

	e := &OllamaEmbedder{Model: "llama3", BaseURL: ts.URL, Client: ts.Client()}

	vecs, err := e.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.False(t, called)
}
