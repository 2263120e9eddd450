package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/diarization"
	"clinicrag/internal/extraction"
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
}

func (f *fakeLLM) Complete(ctx context.Context, msgs []providers.Message, params providers.CompletionParams) (string, error) {
	return f.response, nil
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 8), nil
}
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 8)
	}
	return out, nil
}
func (f *fakeEmbedder) Dimension() int { return 8 }

type fakeOCR struct {
	pdfResult   providers.PdfResult
	imageResult providers.ImageResult
}

func (f *fakeOCR) ExtractPdf(ctx context.Context, data []byte, maxPages int) (providers.PdfResult, error) {
	return f.pdfResult, nil
}
func (f *fakeOCR) ExtractImage(ctx context.Context, data []byte, lang string) (providers.ImageResult, error) {
	return f.imageResult, nil
}

func waitForStatus(t *testing.T, store records.Store, id string, want records.Status) records.Record {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		if rec.Status == want || rec.Status == records.Failed {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %v on record %s", want, id)
	return records.Record{}
}

func newTestOrchestrator(asr providers.ASR, llmResponse string, ocr providers.OCR) (*Orchestrator, records.Store, vectorstore.Store) {
	store := records.NewMemoryStore()
	objects := objectstore.NewMemoryStore()
	vectors := vectorstore.NewMemoryStore(8)
	extractor := extraction.New(&fakeLLM{response: llmResponse})
	o := New(store, objects, vectors, asr, extractor, &fakeEmbedder{}, ocr, diarization.Config{MinSegmentSeconds: 1.0}, Config{MaxWorkers: 2, QueueSize: 2})
	return o, store, vectors
}

func TestSubmitAudio_CompletesPipeline(t *testing.T) {
	asr := &fakeASR{result: providers.TranscribeResult{
		Text:     "Buenos días. Me duele la cabeza desde hace tres días.",
		Language: "es",
		Segments: []providers.ASRSegment{
			{TStart: 0, TEnd: 2, Text: "Buenos días, ¿cómo se llama?"},
			{TStart: 2, TEnd: 5, Text: "Me duele la cabeza desde hace tres días"},
		},
	}}
	o, store, vectors := newTestOrchestrator(asr, `{"name": "Pepito Gómez"}`, &fakeOCR{})

	rec, err := o.SubmitAudio(context.Background(), "consulta1.wav", wavHeader(), "audio/wav")
	require.NoError(t, err)

	final := waitForStatus(t, store, rec.ID, records.Completed)
	require.Equal(t, records.Completed, final.Status)
	require.NotNil(t, final.TranscriptText)
	require.True(t, final.VectorStored)
	require.NotNil(t, final.VectorID)
	require.NotEmpty(t, *final.VectorID)

	stats, err := vectors.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Count)
}

func TestSubmitAudio_RejectsInvalidMedia(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeASR{}, "{}", &fakeOCR{})
	_, err := o.SubmitAudio(context.Background(), "bad.wav", []byte("not audio"), "audio/wav")
	require.Error(t, err)
}

func TestSubmitDocument_CompletesPipeline(t *testing.T) {
	o, store, _ := newTestOrchestrator(&fakeASR{}, `{"name": "Pepito Gómez"}`, &fakeOCR{
		pdfResult: providers.PdfResult{Text: "Paciente: Pepito Gómez. Glucosa 180 mg/dL", PageCount: 1},
	})

	pdfData := append([]byte("%PDF-1.4"), make([]byte, 10)...)
	rec, err := o.SubmitDocument(context.Background(), "examen.pdf", pdfData, "application/pdf", DocumentOptions{})
	require.NoError(t, err)

	final := waitForStatus(t, store, rec.ID, records.Completed)
	require.Equal(t, records.Completed, final.Status)
	require.Equal(t, "Pepito Gómez", final.Structured["name"])
	require.NotNil(t, final.VectorID)
	require.NotEmpty(t, *final.VectorID)
}

func TestSubmitAudio_HardFailureOnASRError(t *testing.T) {
	o, store, _ := newTestOrchestrator(&fakeASR{err: coreerr.New(coreerr.ProviderUnavailable, "asr outage")}, "{}", &fakeOCR{})
	rec, err := o.SubmitAudio(context.Background(), "consulta.wav", wavHeader(), "audio/wav")
	require.NoError(t, err)

	final := waitForStatus(t, store, rec.ID, records.Failed)
	require.Equal(t, records.Failed, final.Status)
	require.NotNil(t, final.Error)
}

func TestResubmit_RejectsNonFailedRecord(t *testing.T) {
	o, store, _ := newTestOrchestrator(&fakeASR{result: providers.TranscribeResult{Text: "hola"}}, "{}", &fakeOCR{})
	rec, err := o.SubmitAudio(context.Background(), "consulta.wav", wavHeader(), "audio/wav")
	require.NoError(t, err)
	waitForStatus(t, store, rec.ID, records.Completed)

	_, err = o.Resubmit(context.Background(), rec.ID)
	require.Error(t, err)
}
