package providers

import (
	"context"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

const defaultAnthropicMaxTokens int64 = 1024

// AnthropicLLM adapts the Anthropic Messages API to the LLM capability.
// Grounded on the teacher's internal/llm/anthropic client, trimmed to a
// single non-streaming call: no tool calls, no extended thinking, no
// prompt-cache control blocks.
type AnthropicLLM struct {
	sdk   anthropic.Client
	model string
}

func NewAnthropicLLM(cfg config.ProviderConfig, httpClient *http.Client) *AnthropicLLM {
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
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	return &AnthropicLLM{sdk: anthropic.NewClient(opts...), model: model}
}

func (c *AnthropicLLM) Complete(ctx context.Context, msgs []Message, params CompletionParams) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, completionTimeout(params))
	defer cancel()

	var system []anthropic.TextBlockParam
	converted := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			converted = append(converted, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := defaultAnthropicMaxTokens
	if params.MaxTokens > 0 {
		maxTokens = int64(params.MaxTokens)
	}
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		Messages:  converted,
		System:    system,
		MaxTokens: maxTokens,
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}
	if len(params.Stop) > 0 {
		req.StopSequences = params.Stop
	}

	var out string
	err := withRetry(cctx, func(c2 context.Context) error {
		resp, err := c.sdk.Messages.New(c2, req)
		if err != nil {
			return classifyAnthropicErr(err)
		}
		for _, block := range resp.Content {
			if block.Type == "text" {
				out += block.Text
			}
		}
		return nil
	})
	return out, err
}

func classifyAnthropicErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return coreerr.Wrap(coreerr.RateLimited, "anthropic rate limited", err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return coreerr.Wrap(coreerr.Timeout, "anthropic request timed out", err)
	default:
		return coreerr.Wrap(coreerr.ProviderUnavailable, "anthropic request failed", err)
	}
}
