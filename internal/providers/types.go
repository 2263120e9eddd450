// Package providers defines the C1 capability interfaces (ASR, LLM, Embedder,
// OCR) that the engine binds to concrete vendors at startup. The core never
// imports a vendor SDK outside this package.
package providers

import "context"

// TranscribeHints carries optional caller-known facts about the audio.
type TranscribeHints struct {
	Language string
}

// ASRSegment is a single timed span of an ASR transcript.
type ASRSegment struct {
	TStart float64
	TEnd   float64
	Text   string
}

// TranscribeResult is the normalized ASR output.
type TranscribeResult struct {
	Text       string
	Language   string
	DurationS  float64
	Confidence float64
	Segments   []ASRSegment
}

// ASR transcribes raw audio bytes. Implementations fail with a coreerr Kind
// of ProviderUnavailable, InvalidMedia or Timeout.
type ASR interface {
	Transcribe(ctx context.Context, audio []byte, hints TranscribeHints) (TranscribeResult, error)
}

// Message is a single chat turn passed to an LLM.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// CompletionParams controls an LLM.Complete call.
type CompletionParams struct {
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// LLM performs a single non-streaming chat completion. Implementations fail
// with RateLimited, Timeout, ProviderUnavailable or InvalidInput.
type LLM interface {
	Complete(ctx context.Context, msgs []Message, params CompletionParams) (string, error)
}

// Embedder produces a fixed-dimension embedding for a piece of text.
// Embed must be deterministic for identical input.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// PdfResult is the normalized output of PDF text extraction.
type PdfResult struct {
	Text      string
	PageCount int
}

// ImageResult is the normalized output of image OCR.
type ImageResult struct {
	Text       string
	Confidence float64
}

// OCR extracts text from PDF and image documents.
type OCR interface {
	ExtractPdf(ctx context.Context, data []byte, maxPages int) (PdfResult, error)
	ExtractImage(ctx context.Context, data []byte, lang string) (ImageResult, error)
}
