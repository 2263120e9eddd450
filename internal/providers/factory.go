package providers

import (
	"net/http"
	"strings"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// NewLLM resolves the configured chat-completion backend, mirroring the
// records/vectorstore New(cfg) factory style: unknown backends are rejected
// rather than silently defaulted.
func NewLLM(cfg config.ProviderConfig, httpClient *http.Client) (LLM, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "openai":
		return NewOpenAILLM(cfg, httpClient), nil
	case "anthropic":
		return NewAnthropicLLM(cfg, httpClient), nil
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown llm backend: "+cfg.Backend)
	}
}

// NewEmbedder resolves the configured embedding backend.
func NewEmbedder(cfg config.ProviderConfig, dim int, httpClient *http.Client) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "http", "openai":
		return NewHTTPEmbedder(cfg, dim, httpClient), nil
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown embedder backend: "+cfg.Backend)
	}
}

// NewASR resolves the configured speech-to-text backend.
func NewASR(cfg config.ProviderConfig, httpClient *http.Client) (ASR, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "http":
		return NewHTTPASR(cfg, httpClient), nil
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown asr backend: "+cfg.Backend)
	}
}

// NewOCR builds the combined PDF+image OCR capability; PDF extraction is
// always local (ledongthuc/pdf), image OCR is the configured HTTP backend.
func NewOCR(cfg config.ProviderConfig, httpClient *http.Client) OCR {
	return NewCombinedOCR(NewPdfExtractor(), NewHTTPImageOCR(cfg, httpClient))
}
