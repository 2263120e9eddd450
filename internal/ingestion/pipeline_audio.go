package ingestion

import (
	"context"
	"time"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/diarization"
	"clinicrag/internal/providers"
	"clinicrag/internal/records"
	"clinicrag/internal/vectorstore"
)

const (
	asrTimeout   = 300 * time.Second
	llmTimeout   = 60 * time.Second
	embedTimeout = 30 * time.Second
	vectorTimeout = 10 * time.Second
)

// runAudioPipeline drives a Recording from Pending through Completed/Failed
// per §4.6's audio pipeline: transcribe, extract (parallel), diarize
// (soft-fail), index (soft-fail).
func (o *Orchestrator) runAudioPipeline(ctx context.Context, rec records.Record, data []byte) {
	rec, err := o.store.Transition(ctx, rec.ID, records.Pending, records.Transcribing)
	if err != nil {
		return
	}

	asrCtx, cancel := context.WithTimeout(ctx, asrTimeout)
	transcript, err := o.asr.Transcribe(asrCtx, data, providers.TranscribeHints{})
	cancel()
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		TranscriptText: &transcript.Text,
		Language:       &transcript.Language,
		DurationS:      &transcript.DurationS,
		Confidence:     &transcript.Confidence,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Transition(ctx, rec.ID, records.Transcribing, records.Extracting)
	if err != nil {
		return
	}

	structured, unstructured, hardErr := o.runExtraction(ctx, transcript.Text)
	if hardErr != nil {
		o.fail(ctx, rec, hardErr)
		return
	}
	extractionPartial := len(structured) == 0 && len(unstructured) == 0 && transcript.Text != ""
	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		Structured:        structured,
		Unstructured:      unstructured,
		ExtractionPartial: &extractionPartial,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Transition(ctx, rec.ID, records.Extracting, records.Diarizing)
	if err != nil {
		return
	}

	diarizationProcessed := true
	segs, stats, dErr := diarization.Diarize(o.diarizationCfg, data, transcript.Segments)
	if dErr != nil {
		diarizationProcessed = false
	} else {
		rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
			SpeakerSegs:  segs,
			SpeakerStats: &stats,
		})
		if err != nil {
			o.fail(ctx, rec, err)
			return
		}
	}
	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		DiarizationProcessed: &diarizationProcessed,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Transition(ctx, rec.ID, records.Diarizing, records.Indexing)
	if err != nil {
		return
	}

	vectorID, vectorStored := o.indexRecord(ctx, rec, vectorstore.SourceRecording, transcript.Text, structured, unstructured)
	patch := records.Patch{VectorStored: &vectorStored}
	if vectorStored {
		patch.VectorID = &vectorID
	}
	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, patch)
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	if _, err := o.store.Transition(ctx, rec.ID, records.Indexing, records.Completed); err != nil {
		return
	}
}

// runExtraction calls structured and unstructured extraction in parallel.
// An extraction error of any kind other than Internal (an LLM provider
// failure, rate limit or timeout) aborts the whole record; a
// soft parse failure degrades to empty maps, per the extractor's own
// retry-then-empty contract.
func (o *Orchestrator) runExtraction(ctx context.Context, text string) (map[string]any, map[string]any, error) {
	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	type result struct {
		fields map[string]any
		err    error
	}
	structuredCh := make(chan result, 1)
	unstructuredCh := make(chan result, 1)

	go func() {
		f, err := o.extractor.ExtractStructured(llmCtx, text)
		structuredCh <- result{f, err}
	}()
	go func() {
		f, err := o.extractor.ExtractUnstructured(llmCtx, text)
		unstructuredCh <- result{f, err}
	}()

	sr := <-structuredCh
	ur := <-unstructuredCh

	if sr.err != nil && coreerr.KindOf(sr.err) != coreerr.Internal {
		return nil, nil, sr.err
	}
	if ur.err != nil && coreerr.KindOf(ur.err) != coreerr.Internal {
		return nil, nil, ur.err
	}
	return sr.fields, ur.fields, nil
}

// indexRecord embeds and upserts the record's vector entry, returning the
// assigned vector id and whether indexing succeeded. A soft failure here
// (embedder or vector store error) degrades to VectorStored=false rather
// than failing the whole record, per §4.6's soft-fail index stage.
func (o *Orchestrator) indexRecord(ctx context.Context, rec records.Record, kind vectorstore.SourceKind, text string, structured, unstructured map[string]any) (string, bool) {
	merged := map[string]any{}
	for k, v := range structured {
		merged[k] = v
	}
	for k, v := range unstructured {
		merged[k] = v
	}
	metadata := stringifyMetadata(merged)
	payload := vectorstore.BuildPayloadText(text, metadata)

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	vec, err := o.embedder.Embed(embedCtx, payload)
	cancel()
	if err != nil {
		return "", false
	}

	vectorCtx, cancel2 := context.WithTimeout(ctx, vectorTimeout)
	defer cancel2()
	vectorID, err := o.vectors.Upsert(vectorCtx, vectorstore.VectorEntry{
		VectorID:    rec.ID,
		SourceKind:  kind,
		SourceID:    rec.ID,
		Embedding:   vec,
		PayloadText: payload,
		Metadata:    metadata,
	})
	if err != nil {
		return "", false
	}
	return vectorID, true
}

func (o *Orchestrator) fail(ctx context.Context, rec records.Record, cause error) {
	msg := cause.Error()
	failed := records.Failed
	_, _ = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		Status: &failed,
		Error:  &msg,
	})
}

// metadataKeyAliases maps extraction field names to the VectorEntry
// metadata keys the retriever (§4.3/§4.8) expects.
var metadataKeyAliases = map[string]string{
	"name":    "patient_name",
	"context": "conditions",
}

// vectorMetadataKeys is the closed set VectorEntry.Metadata may carry (§3).
// Any extracted field outside this set (age, physician, medications, phone,
// email, urgency, emotions, ...) is dropped rather than indexed.
var vectorMetadataKeys = map[string]bool{
	"patient_name": true,
	"diagnosis":    true,
	"symptoms":     true,
	"conditions":   true,
	"date":         true,
	"speaker_mix":  true,
	"doc_type":     true,
}

func stringifyMetadata(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if alias, ok := metadataKeyAliases[k]; ok {
			k = alias
		}
		if !vectorMetadataKeys[k] {
			continue
		}
		switch val := v.(type) {
		case string:
			out[k] = val
		case []any:
			for i, item := range val {
				if s, ok := item.(string); ok {
					if i > 0 {
						out[k] += ", "
					}
					out[k] += s
				}
			}
		}
	}
	return out
}
