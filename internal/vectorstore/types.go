// Package vectorstore implements the C3 vector index: a capability
// interface over Qdrant, Postgres/pgvector and an in-memory backend, plus
// the payload-text builder and fuzzy patient-name matcher the index needs.
package vectorstore

import "context"

// SourceKind identifies what a VectorEntry was derived from.
type SourceKind string

const (
	SourceRecording SourceKind = "Recording"
	SourceDocument  SourceKind = "Document"
)

// VectorEntry is one indexed embedding plus the metadata needed to filter
// and rank it without touching the record store.
type VectorEntry struct {
	VectorID    string
	SourceKind  SourceKind
	SourceID    string
	Embedding   []float32
	PayloadText string
	Metadata    map[string]string
}

// Strategy selects how SearchByField matches its value.
type Strategy int

const (
	Exact Strategy = iota
	Fuzzy
)

// SearchFilter restricts Search to entries whose metadata matches every
// key/value pair exactly.
type SearchFilter map[string]string

// ScoredEntry pairs a VectorEntry with its similarity score.
type ScoredEntry struct {
	Entry VectorEntry
	Score float64
}

// Stats summarizes the state of the index.
type Stats struct {
	Count   int
	Dim     int
	ModelID string
}

// Store is the C3 vector index capability.
type Store interface {
	Upsert(ctx context.Context, entry VectorEntry) (string, error)
	Delete(ctx context.Context, vectorID string) error
	DeleteBySource(ctx context.Context, sourceKind SourceKind, sourceID string) error
	Search(ctx context.Context, queryVector []float32, k int, filters SearchFilter, minScore float64) ([]ScoredEntry, error)
	SearchByField(ctx context.Context, field, value string, strategy Strategy) ([]ScoredEntry, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
