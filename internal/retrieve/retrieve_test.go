package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"clinicrag/internal/query"
	"clinicrag/internal/vectorstore"
)

type fakeEmbedder struct{ dim int }

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dim), nil
}
func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}
func (f fakeEmbedder) Dimension() int { return f.dim }

func seedStore(t *testing.T, entries ...vectorstore.VectorEntry) vectorstore.Store {
	t.Helper()
	store := vectorstore.NewMemoryStore(4)
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			e.Embedding = []float32{1, 0, 0, 0}
		}
		_, err := store.Upsert(context.Background(), e)
		require.NoError(t, err)
	}
	return store
}

func TestRetrieve_PatientInfoUsesFuzzyFieldSearch(t *testing.T) {
	store := seedStore(t, vectorstore.VectorEntry{
		VectorID: "v1", SourceKind: vectorstore.SourceRecording, SourceID: "r1",
		PayloadText: "Paciente reporta fiebre alta.",
		Metadata:    map[string]string{"patient_name": "Juan Pérez"},
	})
	plan := query.Analyze("información de Juan Pérez")
	results, err := Retrieve(context.Background(), plan, Options{}, store, fakeEmbedder{dim: 4})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "r1", results[0].SourceID)
}

func TestRetrieve_ConditionListFiltersAndCapsPerPatient(t *testing.T) {
	store := seedStore(t,
		vectorstore.VectorEntry{VectorID: "v1", SourceKind: vectorstore.SourceRecording, SourceID: "r1",
			PayloadText: "nota", Metadata: map[string]string{"patient_name": "Ana", "diagnosis": "diabetes tipo 2"}},
		vectorstore.VectorEntry{VectorID: "v2", SourceKind: vectorstore.SourceRecording, SourceID: "r2",
			PayloadText: "nota", Metadata: map[string]string{"patient_name": "Ana", "diagnosis": "diabetes tipo 2"}},
		vectorstore.VectorEntry{VectorID: "v3", SourceKind: vectorstore.SourceRecording, SourceID: "r3",
			PayloadText: "nota", Metadata: map[string]string{"patient_name": "Ana", "diagnosis": "diabetes tipo 2"}},
		vectorstore.VectorEntry{VectorID: "v4", SourceKind: vectorstore.SourceRecording, SourceID: "r4",
			PayloadText: "nota sin relacion", Metadata: map[string]string{"patient_name": "Luis", "diagnosis": "asma"}},
	)
	plan := query.Analyze("¿Qué pacientes tienen diabetes?")
	results, err := Retrieve(context.Background(), plan, Options{MaxResults: 10}, store, fakeEmbedder{dim: 4})
	require.NoError(t, err)
	anaCount := 0
	for _, r := range results {
		if r.Metadata["patient_name"] == "Ana" {
			anaCount++
		}
		require.NotEqual(t, "r4", r.SourceID)
	}
	require.LessOrEqual(t, anaCount, conditionListPerPatientCap)
}

func TestRetrieve_GeneralQueryUsesMinScore(t *testing.T) {
	store := seedStore(t, vectorstore.VectorEntry{
		VectorID: "v1", SourceKind: vectorstore.SourceDocument, SourceID: "d1",
		PayloadText: "Resultado de laboratorio normal.", Embedding: []float32{0, 1, 0, 0},
		Metadata: map[string]string{},
	})
	plan := query.Analyze("hola buenos dias")
	results, err := Retrieve(context.Background(), plan, Options{}, store, fakeEmbedder{dim: 4})
	require.NoError(t, err)
	require.Empty(t, results, "zero-vector query has cosine 0 against the seeded entry, below the 0.6 floor")
}

func TestBuildExcerpt_CentersOnFirstHitAndCapsLength(t *testing.T) {
	payload := "x" + string(make([]byte, 500)) + "fiebre" + string(make([]byte, 500))
	excerpt := buildExcerpt(payload, []string{"fiebre"})
	require.LessOrEqual(t, len(excerpt), excerptWindow)
}

func TestBuildExcerpt_ShortPayloadReturnedWhole(t *testing.T) {
	require.Equal(t, "hola", buildExcerpt("hola", []string{"hola"}))
}
