package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, v []float32, meta map[string]string) VectorEntry {
	return VectorEntry{VectorID: id, SourceKind: SourceRecording, SourceID: id, Embedding: v, Metadata: meta}
}

func TestMemoryStore_UpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	_, err := s.Upsert(ctx, entry("a", []float32{1, 0, 0}, map[string]string{"date": "2026-01-01"}))
	require.NoError(t, err)
	_, err = s.Upsert(ctx, entry("b", []float32{0, 1, 0}, map[string]string{"date": "2026-01-02"}))
	require.NoError(t, err)

	results, err := s.Search(ctx, []float32{1, 0, 0}, 10, nil, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Entry.VectorID)
}

func TestMemoryStore_DimensionMismatchRejected(t *testing.T) {
	s := NewMemoryStore(3)
	_, err := s.Upsert(context.Background(), entry("a", []float32{1, 0}, nil))
	assert.Error(t, err)
}

func TestMemoryStore_UpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_, _ = s.Upsert(ctx, entry("a", []float32{1, 0, 0}, map[string]string{"v": "1"}))
	_, _ = s.Upsert(ctx, entry("a", []float32{1, 0, 0}, map[string]string{"v": "2"}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
}

func TestMemoryStore_DeleteBySource(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_, _ = s.Upsert(ctx, entry("a", []float32{1, 0, 0}, nil))

	require.NoError(t, s.DeleteBySource(ctx, SourceRecording, "a"))
	stats, _ := s.Stats(ctx)
	assert.Equal(t, 0, stats.Count)
}

func TestMemoryStore_SearchByFieldFuzzy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_, _ = s.Upsert(ctx, entry("a", []float32{1, 0, 0}, map[string]string{"patient_name": "Maria Garcia"}))

	results, err := s.SearchByField(ctx, "patient_name", "maria garcia", Fuzzy)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestMemoryStore_SearchAppliesMetadataFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)
	_, _ = s.Upsert(ctx, entry("a", []float32{1, 0, 0}, map[string]string{"doc_type": "lab"}))
	_, _ = s.Upsert(ctx, entry("b", []float32{1, 0, 0}, map[string]string{"doc_type": "note"}))

	results, err := s.Search(ctx, []float32{1, 0, 0}, 10, SearchFilter{"doc_type": "lab"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Entry.VectorID)
}
