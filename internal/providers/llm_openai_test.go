package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/config"
)

func TestOpenAILLM_Complete(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hola"}}]}`))
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	cfg := config.ProviderConfig{APIKey: "test", BaseURL: srv.URL, Model: "gpt-4o-mini"}
	c := NewOpenAILLM(cfg, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := c.Complete(ctx, []Message{{Role: "user", Content: "hi"}}, CompletionParams{})
	require.NoError(t, err)
	assert.Equal(t, "hola", out)
}
