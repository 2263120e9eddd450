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

// HTTPASR calls a REST transcription service. No ASR client library appears
// in the retrieval pack, so this speaks a bespoke multipart contract the way
// the pack's own speech-to-text adapters do (see STTClient in the medical
// consultation example).
type HTTPASR struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewHTTPASR(cfg config.ProviderConfig, client *http.Client) *HTTPASR {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPASR{cfg: cfg, client: client}
}

type asrResponseSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type asrResponse struct {
	Text       string               `json:"text"`
	Language   string               `json:"language"`
	DurationS  float64              `json:"duration_s"`
	Confidence float64              `json:"confidence"`
	Segments   []asrResponseSegment `json:"segments"`
}

func (a *HTTPASR) Transcribe(ctx context.Context, audio []byte, hints TranscribeHints) (TranscribeResult, error) {
	timeout := time.Duration(a.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body bytes.Buffer
	mw := newMultipartAudioWriter(&body, audio, hints.Language)
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, a.cfg.BaseURL+a.cfg.Path, &body)
	if err != nil {
		return TranscribeResult{}, coreerr.Wrap(coreerr.Internal, "build transcribe request", err)
	}
	applyAuth(req, a.cfg)
	req.Header.Set("Content-Type", mw)

	var out TranscribeResult
	err = withRetry(cctx, func(c2 context.Context) error {
		resp, err := a.client.Do(req)
		if err != nil {
			if cctx.Err() != nil {
				return coreerr.Wrap(coreerr.Timeout, "transcribe request timed out", err)
			}
			return coreerr.Wrap(coreerr.ProviderUnavailable, "transcribe request failed", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return coreerr.New(coreerr.RateLimited, "asr provider rate limited")
		}
		if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest {
			b, _ := io.ReadAll(resp.Body)
			return coreerr.New(coreerr.InvalidMedia, fmt.Sprintf("asr rejected audio: %s", string(b)))
		}
		if resp.StatusCode/100 != 2 {
			b, _ := io.ReadAll(resp.Body)
			return coreerr.New(coreerr.ProviderUnavailable, fmt.Sprintf("asr error: %s: %s", resp.Status, string(b)))
		}
		var ar asrResponse
		if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
			return coreerr.Wrap(coreerr.Internal, "parse asr response", err)
		}
		segments := make([]ASRSegment, len(ar.Segments))
		for i, s := range ar.Segments {
			segments[i] = ASRSegment{TStart: s.Start, TEnd: s.End, Text: s.Text}
		}
		out = TranscribeResult{
			Text:       ar.Text,
			Language:   ar.Language,
			DurationS:  ar.DurationS,
			Confidence: ar.Confidence,
			Segments:   segments,
		}
		return nil
	})
	return out, err
}

// newMultipartAudioWriter writes a minimal multipart/form-data body with a
// single "audio" file part and an optional "language" field, returning the
// Content-Type header value to set on the request.
func newMultipartAudioWriter(buf *bytes.Buffer, audio []byte, language string) string {
	boundary := "clinicragboundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"audio\"; filename=\"audio.bin\"\r\n")
	buf.WriteString("Content-Type: application/octet-stream\r\n\r\n")
	buf.Write(audio)
	buf.WriteString("\r\n")
	if language != "" {
		buf.WriteString("--" + boundary + "\r\n")
		buf.WriteString("Content-Disposition: form-data; name=\"language\"\r\n\r\n")
		buf.WriteString(language)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")
	return "multipart/form-data; boundary=" + boundary
}
