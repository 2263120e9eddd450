// Package ingestion implements the C6 orchestrator: a bounded worker pool
// driving each record through the audio or document pipeline with
// per-record compare-and-swap transitions.
package ingestion

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/semaphore"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/diarization"
	"clinicrag/internal/extraction"
	"clinicrag/internal/objectstore"
	"clinicrag/internal/providers"
	"clinicrag/internal/records"
	"clinicrag/internal/vectorstore"
)

// Config controls the orchestrator's concurrency limits (§5).
type Config struct {
	MaxWorkers int
	QueueSize  int
}

// Orchestrator drives records through their pipelines. Per §5, each
// record is owned by exactly one worker from submission through
// Completed/Failed; the queue semaphore provides fail-fast backpressure
// and the worker semaphore bounds actual concurrent pipeline execution.
type Orchestrator struct {
	store     records.Store
	objects   objectstore.ObjectStore
	vectors   vectorstore.Store
	asr       providers.ASR
	extractor *extraction.Extractor
	embedder  providers.Embedder
	ocr       providers.OCR

	diarizationCfg diarization.Config

	queueSlots  *semaphore.Weighted
	workerSlots *semaphore.Weighted
}

func New(
	store records.Store,
	objects objectstore.ObjectStore,
	vectors vectorstore.Store,
	asr providers.ASR,
	extractor *extraction.Extractor,
	embedder providers.Embedder,
	ocr providers.OCR,
	diarizationCfg diarization.Config,
	cfg Config,
) *Orchestrator {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = workers * 4
	}
	return &Orchestrator{
		store:          store,
		objects:        objects,
		vectors:        vectors,
		asr:            asr,
		extractor:      extractor,
		embedder:       embedder,
		ocr:            ocr,
		diarizationCfg: diarizationCfg,
		queueSlots:     semaphore.NewWeighted(int64(queue)),
		workerSlots:    semaphore.NewWeighted(int64(workers)),
	}
}

func objectKey(id string) string { return "records/" + id + "/raw" }

// SubmitAudio validates and admits a new Recording. Returns Busy if the
// bounded work queue is full.
func (o *Orchestrator) SubmitAudio(ctx context.Context, filename string, data []byte, mime string) (records.Record, error) {
	if err := validateAudio(data, filename); err != nil {
		return records.Record{}, err
	}
	rec, err := o.store.Create(ctx, records.Record{
		Kind:      records.KindRecording,
		Filename:  filename,
		SizeBytes: int64(len(data)),
		Mime:      mime,
	})
	if err != nil {
		return records.Record{}, err
	}
	if _, err := o.objects.Put(ctx, objectKey(rec.ID), bytes.NewReader(data), objectstore.PutOptions{ContentType: mime}); err != nil {
		return records.Record{}, coreerr.Wrap(coreerr.Internal, "store audio blob", err)
	}
	if !o.admit() {
		return records.Record{}, coreerr.New(coreerr.Busy, "ingestion queue is full")
	}
	go o.processAudio(context.WithoutCancel(ctx), rec, data)
	return rec, nil
}

// DocumentOptions carries caller-supplied hints for SubmitDocument.
type DocumentOptions struct {
	// OverrideOCRConfidence admits a low-confidence image OCR result
	// instead of rejecting it, per §4.6 step 2 / §8's "unless overridden"
	// boundary.
	OverrideOCRConfidence bool
}

// SubmitDocument validates and admits a new Document. Returns Busy if the
// bounded work queue is full.
func (o *Orchestrator) SubmitDocument(ctx context.Context, filename string, data []byte, mime string, opts DocumentOptions) (records.Record, error) {
	fileKind, err := validateDocument(data, filename)
	if err != nil {
		return records.Record{}, err
	}
	rec, err := o.store.Create(ctx, records.Record{
		Kind:      records.KindDocument,
		Filename:  filename,
		SizeBytes: int64(len(data)),
		Mime:      mime,
		FileKind:  fileKind,
	})
	if err != nil {
		return records.Record{}, err
	}
	if _, err := o.objects.Put(ctx, objectKey(rec.ID), bytes.NewReader(data), objectstore.PutOptions{ContentType: mime}); err != nil {
		return records.Record{}, coreerr.Wrap(coreerr.Internal, "store document blob", err)
	}
	if !o.admit() {
		return records.Record{}, coreerr.New(coreerr.Busy, "ingestion queue is full")
	}
	go o.processDocument(context.WithoutCancel(ctx), rec, data, fileKind, opts.OverrideOCRConfidence)
	return rec, nil
}

// Resubmit clones a Failed record back to Pending and re-enqueues it,
// reusing the original uploaded blob so bytes are not re-uploaded.
func (o *Orchestrator) Resubmit(ctx context.Context, id string) (records.Record, error) {
	rec, err := o.store.Get(ctx, id)
	if err != nil {
		return records.Record{}, err
	}
	if rec.Status != records.Failed {
		return records.Record{}, coreerr.New(coreerr.Conflict, "only Failed records can be resubmitted")
	}

	rc, _, err := o.objects.Get(ctx, objectKey(id))
	if err != nil {
		return records.Record{}, coreerr.Wrap(coreerr.Internal, "load stored blob for resubmit", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return records.Record{}, coreerr.Wrap(coreerr.Internal, "read stored blob for resubmit", err)
	}

	pending := records.Pending
	rec, err = o.store.Update(ctx, id, rec.UpdatedAt, records.Patch{Status: &pending})
	if err != nil {
		return records.Record{}, err
	}

	if !o.admit() {
		return records.Record{}, coreerr.New(coreerr.Busy, "ingestion queue is full")
	}
	if rec.Kind == records.KindRecording {
		go o.processAudio(context.WithoutCancel(ctx), rec, data)
	} else {
		go o.processDocument(context.WithoutCancel(ctx), rec, data, rec.FileKind, false)
	}
	return rec, nil
}

// admit reserves one queue slot without blocking, the fail-fast
// backpressure contract: a full queue is a submit-time Busy, not a wait.
func (o *Orchestrator) admit() bool {
	return o.queueSlots.TryAcquire(1)
}

func (o *Orchestrator) processAudio(ctx context.Context, rec records.Record, data []byte) {
	defer o.queueSlots.Release(1)
	if err := o.workerSlots.Acquire(ctx, 1); err != nil {
		return
	}
	defer o.workerSlots.Release(1)
	o.runAudioPipeline(ctx, rec, data)
}

func (o *Orchestrator) processDocument(ctx context.Context, rec records.Record, data []byte, fileKind records.FileKind, overrideOCRConfidence bool) {
	defer o.queueSlots.Release(1)
	if err := o.workerSlots.Acquire(ctx, 1); err != nil {
		return
	}
	defer o.workerSlots.Release(1)
	o.runDocumentPipeline(ctx, rec, data, fileKind, overrideOCRConfidence)
}
