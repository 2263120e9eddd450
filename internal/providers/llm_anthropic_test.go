package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/config"
)

func TestAnthropicLLM_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		w.Header().Set("Content-Type", "application/json")
		resp := sdk.Message{
			ID:         "msg_1",
			Type:       constant.Message("message"),
			Role:       constant.Assistant("assistant"),
			Model:      sdk.ModelClaude3_7SonnetLatest,
			StopReason: sdk.StopReasonEndTurn,
			Content: []sdk.ContentBlockUnion{
				{Type: "text", Text: "hola"},
			},
		}
		b, _ := json.Marshal(resp)
		_, _ = w.Write(b)
	}))
	t.Cleanup(srv.Close)

	cfg := config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}
	c := NewAnthropicLLM(cfg, srv.Client())

	out, err := c.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, CompletionParams{})
	require.NoError(t, err)
	assert.Equal(t, "hola", out)
}
