package rag

import (
	"context"

	"github.com/samber/lo"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/providers"
	"clinicrag/internal/query"
	"clinicrag/internal/retrieve"
)

// Generate assembles a prompt for plan.Intent, calls llm with the retrieved
// context, validates the answer and computes confidence and follow-ups
// (§4.9).
func Generate(ctx context.Context, plan query.QueryPlan, results []retrieve.Result, llm providers.LLM) (ChatResult, error) {
	contextBlock := assembleContext(results)

	msgs := []providers.Message{
		{Role: "system", Content: promptFor(plan.Intent)},
		{Role: "user", Content: "Contexto:\n" + contextBlock + "\n\nPregunta: " + plan.RawQuery},
	}

	raw, err := llm.Complete(ctx, msgs, providers.CompletionParams{Temperature: 0.2, MaxTokens: 800})
	if err != nil {
		return ChatResult{}, coreerr.Wrap(coreerr.Internal, "generate answer", err)
	}

	answer := validateAnswer(raw)
	sources := buildSourceRefs(results)

	return ChatResult{
		Answer:     answer,
		Confidence: computeConfidence(plan.Entities, results),
		Sources:    sources,
		FollowUps:  followUpSuggestions(plan),
	}, nil
}

func buildSourceRefs(results []retrieve.Result) []SourceRef {
	return lo.Map(results, func(r retrieve.Result, _ int) SourceRef {
		return SourceRef{SourceKind: r.SourceKind, SourceID: r.SourceID, Excerpt: r.Excerpt}
	})
}
