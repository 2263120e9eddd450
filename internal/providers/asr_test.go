package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

func TestHTTPASR_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"buenos dias doctor","language":"es","duration_s":12.5,"confidence":0.92,
			"segments":[{"start":0,"end":3.2,"text":"buenos dias doctor"}]}`))
	}))
	defer srv.Close()

	a := NewHTTPASR(config.ProviderConfig{BaseURL: srv.URL, Path: "/transcribe"}, srv.Client())
	res, err := a.Transcribe(context.Background(), []byte{0x1, 0x2}, TranscribeHints{Language: "es"})
	require.NoError(t, err)
	assert.Equal(t, "buenos dias doctor", res.Text)
	assert.Equal(t, "es", res.Language)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, 3.2, res.Segments[0].TEnd)
}

func TestHTTPASR_InvalidMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("unsupported codec"))
	}))
	defer srv.Close()

	a := NewHTTPASR(config.ProviderConfig{BaseURL: srv.URL, Path: "/transcribe"}, srv.Client())
	_, err := a.Transcribe(context.Background(), []byte{0x1}, TranscribeHints{})
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))
}
