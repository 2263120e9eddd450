// Package extraction implements the C4 LLM-driven structured and
// unstructured field extraction service.
package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/providers"
)

const maxInputChars = 4000

// Extractor runs the structured/unstructured extraction prompts against a
// bound LLM. It never returns an error for a malformed model response: a
// second parse failure degrades to an empty map, a soft error the caller
// records rather than propagates.
type Extractor struct {
	llm providers.LLM
}

func New(llm providers.LLM) *Extractor {
	return &Extractor{llm: llm}
}

// ExtractStructured recognizes name, age, date, diagnosis, physician,
// medications, phone, email.
func (e *Extractor) ExtractStructured(ctx context.Context, text string) (map[string]any, error) {
	out, err := e.extract(ctx, structuredSystemPrompt, text)
	if err != nil {
		return map[string]any{}, err
	}
	sanitizeAge(out)
	return out, nil
}

// ExtractUnstructured recognizes symptoms, context, observations,
// emotions, urgency, recommendations, questions, answers.
func (e *Extractor) ExtractUnstructured(ctx context.Context, text string) (map[string]any, error) {
	return e.extract(ctx, unstructuredSystemPrompt, text)
}

// ExtractDocumentMetadata is the document-scoped variant of
// ExtractStructured used by the C6 document pipeline.
func (e *Extractor) ExtractDocumentMetadata(ctx context.Context, text string) (map[string]any, error) {
	out, err := e.extract(ctx, documentMetadataSystemPrompt, text)
	if err != nil {
		return map[string]any{}, err
	}
	sanitizeAge(out)
	return out, nil
}

func (e *Extractor) extract(ctx context.Context, systemPrompt, text string) (map[string]any, error) {
	truncated := truncateAtSentence(text, maxInputChars)

	msgs := []providers.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: truncated},
	}
	params := providers.CompletionParams{Temperature: 0, MaxTokens: 800}

	raw, err := e.llm.Complete(ctx, msgs, params)
	if err != nil {
		return map[string]any{}, coreerr.Wrap(coreerr.KindOf(err), "extraction completion", err)
	}

	out, ok := parseJSONObject(raw)
	if ok {
		return out, nil
	}

	retryMsgs := append(msgs, providers.Message{Role: "user", Content: strictJSONReminder})
	raw, err = e.llm.Complete(ctx, retryMsgs, params)
	if err != nil {
		return map[string]any{}, nil
	}
	out, ok = parseJSONObject(raw)
	if !ok {
		return map[string]any{}, nil
	}
	return out, nil
}

// parseJSONObject takes the substring from the first `{` to the last `}`
// (tolerating surrounding markdown fences or commentary) and parses it as an
// object. Braces are not matched, so a reply holding two separate objects
// does not parse.
func parseJSONObject(raw string) (map[string]any, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end < start {
		return nil, false
	}
	candidate := raw[start : end+1]
	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, false
	}
	return out, true
}

// sanitizeAge drops the age field when present but outside [0,150],
// rather than failing the whole extraction over one bad field.
func sanitizeAge(fields map[string]any) {
	v, present := fields["age"]
	if !present {
		return
	}
	age, ok := asFloat(v)
	if !ok || age < 0 || age > 150 {
		delete(fields, "age")
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// truncateAtSentence cuts text to at most max runes, backing off to the
// last sentence boundary (. ! ? followed by whitespace) so the model isn't
// handed a sentence fragment.
func truncateAtSentence(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	window := runes[:max]
	for i := len(window) - 1; i > 0; i-- {
		if isSentenceEnd(window[i]) && i+1 < len(window) && unicode.IsSpace(window[i+1]) {
			return string(window[:i+1])
		}
	}
	return string(window)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
