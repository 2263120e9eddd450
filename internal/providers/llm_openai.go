package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// OpenAILLM adapts an OpenAI-compatible chat completions endpoint to the LLM
// capability. Grounded on the teacher's internal/llm/openai client, trimmed
// to a single non-streaming call: no tool schemas, no image attachments, no
// reasoning-effort or self-hosted transport quirks.
type OpenAILLM struct {
	sdk   sdk.Client
	model string
}

func NewOpenAILLM(cfg config.ProviderConfig, httpClient *http.Client) *OpenAILLM {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAILLM{sdk: sdk.NewClient(opts...), model: model}
}

func (c *OpenAILLM) Complete(ctx context.Context, msgs []Message, params CompletionParams) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, completionTimeout(params))
	defer cancel()

	chatMsgs := make([]sdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			chatMsgs = append(chatMsgs, sdk.SystemMessage(m.Content))
		case "assistant":
			chatMsgs = append(chatMsgs, sdk.AssistantMessage(m.Content))
		default:
			chatMsgs = append(chatMsgs, sdk.UserMessage(m.Content))
		}
	}

	req := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(c.model),
		Messages: chatMsgs,
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = param.NewOpt[int64](int64(params.MaxTokens))
	}
	if params.Temperature > 0 {
		req.Temperature = param.NewOpt(params.Temperature)
	}
	if len(params.Stop) > 0 {
		req.Stop = sdk.ChatCompletionNewParamsStopUnion{OfStringArray: params.Stop}
	}

	var out string
	err := withRetry(cctx, func(c2 context.Context) error {
		comp, err := c.sdk.Chat.Completions.New(c2, req)
		if err != nil {
			return classifyOpenAIErr(err)
		}
		if len(comp.Choices) == 0 {
			return coreerr.New(coreerr.Internal, "openai completion returned no choices")
		}
		out = comp.Choices[0].Message.Content
		return nil
	})
	return out, err
}

func completionTimeout(params CompletionParams) time.Duration {
	return 60 * time.Second
}

func classifyOpenAIErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return coreerr.Wrap(coreerr.RateLimited, "openai rate limited", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return coreerr.Wrap(coreerr.Timeout, "openai request timed out", err)
	default:
		return coreerr.Wrap(coreerr.ProviderUnavailable, "openai request failed", err)
	}
}
