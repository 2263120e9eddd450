package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

func newEmbedderServer(t *testing.T, status int, body any) (*httptest.Server, config.ProviderConfig) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, config.ProviderConfig{BaseURL: srv.URL, Path: "/embeddings", Model: "test-embed"}
}

func TestHTTPEmbedder_EmbedBatch(t *testing.T) {
	resp := embedResponse{Data: []struct {
		Embedding []float32 `json:"embedding"`
	}{{Embedding: make([]float32, 384)}}}
	srv, cfg := newEmbedderServer(t, http.StatusOK, resp)
	_ = srv
	e := NewHTTPEmbedder(cfg, 384, nil)

	out, err := e.EmbedBatch(context.Background(), []string{"hola"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0], 384)
}

func TestHTTPEmbedder_DimensionMismatch(t *testing.T) {
	resp := embedResponse{Data: []struct {
		Embedding []float32 `json:"embedding"`
	}{{Embedding: make([]float32, 10)}}}
	_, cfg := newEmbedderServer(t, http.StatusOK, resp)
	e := NewHTTPEmbedder(cfg, 384, nil)

	_, err := e.EmbedBatch(context.Background(), []string{"hola"})
	require.Error(t, err)
	assert.Equal(t, coreerr.Internal, coreerr.KindOf(err))
}

func TestHTTPEmbedder_RateLimited(t *testing.T) {
	_, cfg := newEmbedderServer(t, http.StatusTooManyRequests, nil)
	e := NewHTTPEmbedder(cfg, 384, nil)

	_, err := e.Embed(context.Background(), "hola")
	require.Error(t, err)
	assert.Equal(t, coreerr.RateLimited, coreerr.KindOf(err))
}

func TestHTTPEmbedder_EmptyInput(t *testing.T) {
	e := NewHTTPEmbedder(config.ProviderConfig{}, 384, nil)
	_, err := e.EmbedBatch(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidInput, coreerr.KindOf(err))
}

func TestHTTPEmbedder_Dimension(t *testing.T) {
	e := NewHTTPEmbedder(config.ProviderConfig{}, 384, nil)
	assert.Equal(t, 384, e.Dimension())
}
