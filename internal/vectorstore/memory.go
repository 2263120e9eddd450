package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"clinicrag/internal/coreerr"
)

// MemoryStore is an in-memory Store used by tests and the memory backend.
// Adapted from the teacher's memory_vector.go cosine-similarity scan.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]VectorEntry
}

func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{dim: dim, entries: make(map[string]VectorEntry)}
}

func (m *MemoryStore) Upsert(_ context.Context, entry VectorEntry) (string, error) {
	if m.dim > 0 && len(entry.Embedding) != m.dim {
		return "", coreerr.New(coreerr.Internal, "embedding dimension mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.VectorID] = entry
	return entry.VectorID, nil
}

func (m *MemoryStore) Delete(_ context.Context, vectorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, vectorID)
	return nil
}

func (m *MemoryStore) DeleteBySource(_ context.Context, sourceKind SourceKind, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.SourceKind == sourceKind && e.SourceID == sourceID {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MemoryStore) Search(_ context.Context, queryVector []float32, k int, filters SearchFilter, minScore float64) ([]ScoredEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ScoredEntry
	for _, e := range m.entries {
		if !matchesFilter(e.Metadata, filters) {
			continue
		}
		score := cosine(queryVector, e.Embedding)
		if score < minScore {
			continue
		}
		out = append(out, ScoredEntry{Entry: e, Score: score})
	}
	sortScored(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (m *MemoryStore) SearchByField(_ context.Context, field, value string, strategy Strategy) ([]ScoredEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ScoredEntry
	for _, e := range m.entries {
		candidate, ok := e.Metadata[field]
		if !ok {
			continue
		}
		var score float64
		switch strategy {
		case Exact:
			if candidate == value {
				score = 1.0
			}
		default:
			score = FuzzyScore(value, candidate)
		}
		if score <= 0 {
			continue
		}
		if strategy == Fuzzy && score < DefaultFuzzyThreshold {
			continue
		}
		out = append(out, ScoredEntry{Entry: e, Score: score})
	}
	sortScored(out)
	return out, nil
}

func (m *MemoryStore) Stats(context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Count: len(m.entries), Dim: m.dim, ModelID: "memory"}, nil
}

func (m *MemoryStore) Close() error { return nil }

func matchesFilter(metadata map[string]string, filters SearchFilter) bool {
	for k, v := range filters {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func sortScored(entries []ScoredEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		di, dj := entries[i].Entry.Metadata["date"], entries[j].Entry.Metadata["date"]
		if di != dj {
			return di > dj
		}
		return entries[i].Entry.SourceID < entries[j].Entry.SourceID
	})
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
