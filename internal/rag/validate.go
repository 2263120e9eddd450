package rag

import "strings"

const maxAnswerChars = 2000

// validateAnswer trims to maxAnswerChars, appends the medical disclaimer,
// and falls back to a fixed message for an answer that is empty after
// trimming (§4.9).
func validateAnswer(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return insufficientInfoFallback
	}
	if len(trimmed) > maxAnswerChars {
		trimmed = trimmed[:maxAnswerChars]
	}
	return trimmed + disclaimer
}
