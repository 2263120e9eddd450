// Package rag implements the C9 generator: intent-specific prompt
// assembly, bounded context construction, answer validation, a confidence
// score and templated follow-up suggestions.
package rag

import "clinicrag/internal/vectorstore"

// SourceRef cites one retrieved item an answer was grounded on.
type SourceRef struct {
	SourceKind vectorstore.SourceKind
	SourceID   string
	Excerpt    string
}

// ChatResult is the façade-level response to a chat query.
type ChatResult struct {
	Answer     string
	Confidence float64
	Sources    []SourceRef
	FollowUps  []string
}
