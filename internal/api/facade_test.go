package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"clinicrag/internal/diarization"
	"clinicrag/internal/extraction"
	"clinicrag/internal/ingestion"
	"clinicrag/internal/objectstore"
	"clinicrag/internal/providers"
	"clinicrag/internal/records"
	"clinicrag/internal/vectorstore"
)

type fakeASR struct {
	result providers.TranscribeResult
	err    error
}

func (f *fakeASR) Transcribe(ctx context.Context, audio []byte, hints providers.TranscribeHints) (providers.TranscribeResult, error) {
	return f.result, f.err
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, msgs []providers.Message, params providers.CompletionParams) (string, error) {
	return f.response, f.err
}

type fakeEmbedder struct{ dim int }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dim), nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}
func (f *fakeEmbedder) Dimension() int { return f.dim }

type fakeOCR struct {
	pdfResult providers.PdfResult
}

func (f *fakeOCR) ExtractPdf(ctx context.Context, data []byte, maxPages int) (providers.PdfResult, error) {
	return f.pdfResult, nil
}
func (f *fakeOCR) ExtractImage(ctx context.Context, data []byte, lang string) (providers.ImageResult, error) {
	return providers.ImageResult{}, nil
}

func wavHeader() []byte {
	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	copy(h[36:40], "data")
	return h
}

func newTestFacade(t *testing.T) (*Facade, records.Store, vectorstore.Store) {
	t.Helper()
	store := records.NewMemoryStore()
	objects := objectstore.NewMemoryStore()
	vectors := vectorstore.NewMemoryStore(8)
	embedder := &fakeEmbedder{dim: 8}
	extractor := extraction.New(&fakeLLM{response: `{"name": "Pepito Gómez"}`})
	asr := &fakeASR{result: providers.TranscribeResult{
		Text:     "Me duele la cabeza.",
		Language: "es",
		Segments: []providers.ASRSegment{{TStart: 0, TEnd: 2, Text: "Me duele la cabeza"}},
	}}
	orchestrator := ingestion.New(store, objects, vectors, asr, extractor, embedder, &fakeOCR{},
		diarization.Config{MinSegmentSeconds: 1.0}, ingestion.Config{MaxWorkers: 2, QueueSize: 2})

	llm := &fakeLLM{response: "Pepito tiene cefalea."}
	facade := New(store, vectors, orchestrator, llm, embedder, map[string]HealthChecker{
		"records": RecordStoreHealthChecker{Store: store},
	})
	return facade, store, vectors
}

func TestFacade_SubmitAudioAndGetRecord(t *testing.T) {
	facade, _, _ := newTestFacade(t)
	rec, err := facade.SubmitAudio(context.Background(), "consulta1.wav", wavHeader(), "audio/wav")
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := facade.GetRecord(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
}

func TestFacade_ListRecords(t *testing.T) {
	facade, _, _ := newTestFacade(t)
	_, err := facade.SubmitAudio(context.Background(), "consulta1.wav", wavHeader(), "audio/wav")
	require.NoError(t, err)

	recs, err := facade.ListRecords(context.Background(), records.Filter{}, records.Page{Size: 10})
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestFacade_DeleteRecordCascadesVectorEntry(t *testing.T) {
	facade, store, vectors := newTestFacade(t)

	rec, err := store.Create(context.Background(), records.Record{
		ID:       "rec-1",
		Kind:     records.KindRecording,
		Filename: "a.wav",
		Status:   records.Completed,
	})
	require.NoError(t, err)

	vid := "rec-1"
	_, err = store.Update(context.Background(), rec.ID, rec.UpdatedAt, records.Patch{VectorID: &vid})
	require.NoError(t, err)

	_, err = vectors.Upsert(context.Background(), vectorstore.VectorEntry{
		VectorID:    "rec-1",
		SourceKind:  vectorstore.SourceRecording,
		SourceID:    "rec-1",
		Embedding:   make([]float32, 8),
		PayloadText: "texto",
		Metadata:    map[string]string{"patient_name": "Pepito Gómez"},
	})
	require.NoError(t, err)

	require.NoError(t, facade.DeleteRecord(context.Background(), "rec-1"))

	_, err = facade.GetRecord(context.Background(), "rec-1")
	require.Error(t, err)

	stats, err := vectors.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, stats.Count)
}

func TestFacade_ChatReturnsAnswerWithSources(t *testing.T) {
	facade, _, vectors := newTestFacade(t)
	_, err := vectors.Upsert(context.Background(), vectorstore.VectorEntry{
		VectorID:    "v1",
		SourceKind:  vectorstore.SourceRecording,
		SourceID:    "rec-1",
		Embedding:   make([]float32, 8),
		PayloadText: "Paciente Pepito Gómez refiere dolor de cabeza. Diagnóstico: migraña.",
		Metadata:    map[string]string{"patient_name": "Pepito Gómez", "diagnosis": "migraña"},
	})
	require.NoError(t, err)

	res, err := facade.Chat(context.Background(), "¿Qué enfermedad tiene Pepito Gómez?", ChatOptions{MaxResults: 5})
	require.NoError(t, err)
	require.NotEmpty(t, res.Answer)
	require.NotEmpty(t, res.Sources)
}

func TestFacade_SearchReturnsResultsWithoutGeneration(t *testing.T) {
	facade, _, vectors := newTestFacade(t)
	_, err := vectors.Upsert(context.Background(), vectorstore.VectorEntry{
		VectorID:    "v1",
		SourceKind:  vectorstore.SourceRecording,
		SourceID:    "rec-1",
		Embedding:   make([]float32, 8),
		PayloadText: "Paciente con dolor de cabeza.",
		Metadata:    map[string]string{"patient_name": "Pepito Gómez"},
	})
	require.NoError(t, err)

	results, err := facade.Search(context.Background(), "dolor de cabeza", SearchOptions{MaxResults: 5})
	require.NoError(t, err)
	require.NotNil(t, results)
}

func TestFacade_HealthReportsEveryDependency(t *testing.T) {
	facade, _, _ := newTestFacade(t)
	statuses := facade.Health(context.Background())
	require.Contains(t, statuses, "vector_store")
	require.Contains(t, statuses, "records")
	require.True(t, statuses["vector_store"].OK)
	require.True(t, statuses["records"].OK)
}

func TestFacade_VectorStoreStatus(t *testing.T) {
	facade, _, _ := newTestFacade(t)
	stats, err := facade.VectorStoreStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, stats.Dim)
}
