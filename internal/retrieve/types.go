// Package retrieve implements the C8 retriever: intent-driven strategy
// dispatch over the vector index, a uniform post-retrieval ranker and an
// excerpt builder.
package retrieve

import "clinicrag/internal/vectorstore"

// Result is one ranked, excerpted retrieval hit.
type Result struct {
	VectorID       string
	SourceKind     vectorstore.SourceKind
	SourceID       string
	Metadata       map[string]string
	BaseSimilarity float64
	FinalScore     float64
	Excerpt        string
}

// Options bounds a single retrieval call.
type Options struct {
	MaxResults int
}

const defaultMaxResults = 10

func (o Options) maxResults() int {
	if o.MaxResults > 0 {
		return o.MaxResults
	}
	return defaultMaxResults
}
