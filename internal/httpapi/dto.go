package httpapi

import (
	"time"

	"clinicrag/internal/rag"
	"clinicrag/internal/records"
	"clinicrag/internal/retrieve"
)

// recordView is the §6 JSON projection of a records.Record: times as ISO
// 8601 UTC, ids as opaque strings, the same field names §3 names.
type recordView struct {
	ID             string         `json:"id"`
	Kind           string         `json:"kind"`
	Filename       string         `json:"filename"`
	SizeBytes      int64          `json:"size_bytes"`
	Mime           string         `json:"mime"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	TranscriptText *string        `json:"transcript_text,omitempty"`
	Structured     map[string]any `json:"structured,omitempty"`
	Unstructured   map[string]any `json:"unstructured,omitempty"`
	Language       *string        `json:"language,omitempty"`
	DurationS      *float64       `json:"duration_s,omitempty"`
	Confidence     *float64       `json:"confidence,omitempty"`
	VectorStored   bool           `json:"vector_stored"`
	Error          *string        `json:"error,omitempty"`
}

func toRecordView(r records.Record) recordView {
	return recordView{
		ID:             r.ID,
		Kind:           string(r.Kind),
		Filename:       r.Filename,
		SizeBytes:      r.SizeBytes,
		Mime:           r.Mime,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
		TranscriptText: r.TranscriptText,
		Structured:     r.Structured,
		Unstructured:   r.Unstructured,
		Language:       r.Language,
		DurationS:      r.DurationS,
		Confidence:     r.Confidence,
		VectorStored:   r.VectorStored,
		Error:          r.Error,
	}
}

type chatRequest struct {
	Query          string `json:"query"`
	MaxResults     int    `json:"max_results"`
	IncludeSources bool   `json:"include_sources"`
}

type sourceView struct {
	SourceKind string `json:"source_kind"`
	SourceID   string `json:"source_id"`
	Excerpt    string `json:"excerpt,omitempty"`
}

type chatResponse struct {
	Answer     string       `json:"answer"`
	Confidence float64      `json:"confidence"`
	Sources    []sourceView `json:"sources,omitempty"`
	FollowUps  []string     `json:"follow_ups,omitempty"`
}

func toChatResponse(res rag.ChatResult, includeSources bool) chatResponse {
	resp := chatResponse{
		Answer:     res.Answer,
		Confidence: res.Confidence,
		FollowUps:  res.FollowUps,
	}
	if includeSources {
		for _, s := range res.Sources {
			resp.Sources = append(resp.Sources, sourceView{
				SourceKind: string(s.SourceKind),
				SourceID:   s.SourceID,
				Excerpt:    s.Excerpt,
			})
		}
	}
	return resp
}

type searchResultView struct {
	SourceKind string  `json:"source_kind"`
	SourceID   string  `json:"source_id"`
	Score      float64 `json:"score"`
	Excerpt    string  `json:"excerpt"`
}

func toSearchResults(results []retrieve.Result) []searchResultView {
	out := make([]searchResultView, 0, len(results))
	for _, r := range results {
		out = append(out, searchResultView{
			SourceKind: string(r.SourceKind),
			SourceID:   r.SourceID,
			Score:      r.FinalScore,
			Excerpt:    r.Excerpt,
		})
	}
	return out
}
