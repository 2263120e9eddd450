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

func TestPdfExtractor_InvalidData(t *testing.T) {
	p := NewPdfExtractor()
	_, err := p.ExtractPdf(context.Background(), []byte("not a pdf"), 50)
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))
}

func TestHTTPImageOCR_ExtractImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"laboratorio: glucosa 95","confidence":0.81}`))
	}))
	defer srv.Close()

	o := NewHTTPImageOCR(config.ProviderConfig{BaseURL: srv.URL, Path: "/ocr"}, srv.Client())
	res, err := o.ExtractImage(context.Background(), []byte{0xff, 0xd8}, "es")
	require.NoError(t, err)
	assert.Equal(t, "laboratorio: glucosa 95", res.Text)
	assert.InDelta(t, 0.81, res.Confidence, 0.001)
}

func TestCombinedOCR_RoutesByMethod(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"x","confidence":0.7}`))
	}))
	defer imgSrv.Close()

	c := NewCombinedOCR(NewPdfExtractor(), NewHTTPImageOCR(config.ProviderConfig{BaseURL: imgSrv.URL}, imgSrv.Client()))
	_, err := c.ExtractPdf(context.Background(), []byte("not a pdf"), 50)
	require.Error(t, err)
	assert.Equal(t, coreerr.InvalidMedia, coreerr.KindOf(err))

	res, err := c.ExtractImage(context.Background(), []byte{0x1}, "es")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Text)
}
