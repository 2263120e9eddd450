package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// HTTPEmbedder calls an OpenAI-compatible /embeddings endpoint. Adapted from
// the teacher's internal/embedding client to the Embedder capability shape.
type HTTPEmbedder struct {
	cfg    config.ProviderConfig
	dim    int
	client *http.Client
}

// NewHTTPEmbedder constructs an Embedder bound to cfg. dim is the fixed
// embedding dimension D the engine was built against.
func NewHTTPEmbedder(cfg config.ProviderConfig, dim int, client *http.Client) *HTTPEmbedder {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPEmbedder{cfg: cfg, dim: dim, client: client}
}

func (e *HTTPEmbedder) Dimension() int { return e.dim }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, coreerr.New(coreerr.InvalidInput, "no inputs to embed")
	}
	timeout := time.Duration(e.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, _ := json.Marshal(embedRequest{Model: e.cfg.Model, Input: texts})
	url := e.cfg.BaseURL + e.cfg.Path
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "build embed request", err)
	}
	applyAuth(req, e.cfg)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if cctx.Err() != nil {
			return nil, coreerr.Wrap(coreerr.Timeout, "embed request timed out", err)
		}
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "embed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, coreerr.New(coreerr.RateLimited, "embedding provider rate limited")
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, fmt.Sprintf("embedding error: %s: %s", resp.Status, string(b)), nil)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "read embed response", err)
	}
	var er embedResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "parse embed response", err)
	}
	if len(er.Data) != len(texts) {
		return nil, coreerr.New(coreerr.Internal, fmt.Sprintf("unexpected embedding count: got %d, want %d", len(er.Data), len(texts)))
	}
	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		if e.dim > 0 && len(er.Data[i].Embedding) != e.dim {
			return nil, coreerr.New(coreerr.Internal, fmt.Sprintf("embedding dimension mismatch: got %d, want %d", len(er.Data[i].Embedding), e.dim))
		}
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}

func applyAuth(req *http.Request, cfg config.ProviderConfig) {
	if cfg.APIKey == "" {
		return
	}
	if cfg.APIHeader == "" || cfg.APIHeader == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		return
	}
	req.Header.Set(cfg.APIHeader, cfg.APIKey)
}
