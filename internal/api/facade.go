// Package api implements the C10 façade: the stable operation set the HTTP
// layer (or any other transport) calls, wiring together the record store,
// vector index, ingestion orchestrator, query analyzer, retriever and RAG
// generator.
package api

import (
	"context"
	"time"

	"clinicrag/internal/ingestion"
	"clinicrag/internal/providers"
	"clinicrag/internal/query"
	"clinicrag/internal/rag"
	"clinicrag/internal/records"
	"clinicrag/internal/retrieve"
	"clinicrag/internal/vectorstore"
)

// Facade is the C10 operation set.
type Facade struct {
	store       records.Store
	vectors     vectorstore.Store
	orchestrator *ingestion.Orchestrator
	llm         providers.LLM
	embedder    providers.Embedder
	healthDeps  map[string]HealthChecker
}

// HealthChecker reports the liveness of one dependency for Health(). The
// method name matches objectstore.ObjectStore's existing Ping so any
// concrete object store satisfies this interface with no adapter.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

func New(
	store records.Store,
	vectors vectorstore.Store,
	orchestrator *ingestion.Orchestrator,
	llm providers.LLM,
	embedder providers.Embedder,
	healthDeps map[string]HealthChecker,
) *Facade {
	return &Facade{
		store:        store,
		vectors:      vectors,
		orchestrator: orchestrator,
		llm:          llm,
		embedder:     embedder,
		healthDeps:   healthDeps,
	}
}

// SubmitAudio admits a new Recording for ingestion.
func (f *Facade) SubmitAudio(ctx context.Context, filename string, data []byte, mime string) (records.Record, error) {
	return f.orchestrator.SubmitAudio(ctx, filename, data, mime)
}

// SubmitDocument admits a new Document for ingestion.
func (f *Facade) SubmitDocument(ctx context.Context, filename string, data []byte, mime string, opts ingestion.DocumentOptions) (records.Record, error) {
	return f.orchestrator.SubmitDocument(ctx, filename, data, mime, opts)
}

// Resubmit re-enqueues a Failed record.
func (f *Facade) Resubmit(ctx context.Context, id string) (records.Record, error) {
	return f.orchestrator.Resubmit(ctx, id)
}

// GetRecord fetches a single record by id.
func (f *Facade) GetRecord(ctx context.Context, id string) (records.Record, error) {
	return f.store.Get(ctx, id)
}

// ListRecords lists records matching filter, paginated.
func (f *Facade) ListRecords(ctx context.Context, filter records.Filter, page records.Page) ([]records.Record, error) {
	return f.store.List(ctx, filter, page)
}

// DeleteRecord removes a record and cascades to its vector entry. The
// cascade runs unconditionally rather than gating on VectorID: DeleteBySource
// is a no-op when no entry exists, and a missing VectorID must never leave
// an orphaned vector entry behind.
func (f *Facade) DeleteRecord(ctx context.Context, id string) error {
	rec, err := f.store.Get(ctx, id)
	if err != nil {
		return err
	}
	sourceKind := vectorstore.SourceRecording
	if rec.Kind == records.KindDocument {
		sourceKind = vectorstore.SourceDocument
	}
	if err := f.vectors.DeleteBySource(ctx, sourceKind, rec.ID); err != nil {
		return err
	}
	return f.store.Delete(ctx, id)
}

// ChatOptions bounds a Chat call.
type ChatOptions struct {
	MaxResults int
}

// Chat runs the full query→retrieve→generate pipeline (C7→C8→C9).
func (f *Facade) Chat(ctx context.Context, rawQuery string, opts ChatOptions) (rag.ChatResult, error) {
	plan := query.Analyze(rawQuery)
	results, err := retrieve.Retrieve(ctx, plan, retrieve.Options{MaxResults: opts.MaxResults}, f.vectors, f.embedder)
	if err != nil {
		return rag.ChatResult{}, err
	}
	return rag.Generate(ctx, plan, results, f.llm)
}

// SearchOptions bounds a Search call.
type SearchOptions struct {
	MaxResults int
}

// Search runs query analysis and retrieval without generation, for the
// wire-level search endpoint.
func (f *Facade) Search(ctx context.Context, rawQuery string, opts SearchOptions) ([]retrieve.Result, error) {
	plan := query.Analyze(rawQuery)
	return retrieve.Retrieve(ctx, plan, retrieve.Options{MaxResults: opts.MaxResults}, f.vectors, f.embedder)
}

// ComponentStatus is one dependency's health as reported by Health().
type ComponentStatus struct {
	OK        bool
	LatencyMS int64
	Error     string
}

// Health checks every registered dependency plus the vector index,
// returning a per-component status map (§12 supplemented feature).
func (f *Facade) Health(ctx context.Context) map[string]ComponentStatus {
	out := make(map[string]ComponentStatus, len(f.healthDeps)+1)

	start := time.Now()
	_, err := f.vectors.Stats(ctx)
	out["vector_store"] = statusFrom(start, err)

	for name, checker := range f.healthDeps {
		start := time.Now()
		err := checker.Ping(ctx)
		out[name] = statusFrom(start, err)
	}
	return out
}

func statusFrom(start time.Time, err error) ComponentStatus {
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return ComponentStatus{OK: false, LatencyMS: latency, Error: err.Error()}
	}
	return ComponentStatus{OK: true, LatencyMS: latency}
}

// VectorStoreStatus exposes C3's Stats() through the façade, wired to
// GET /vector-store/status (§6, §12).
func (f *Facade) VectorStoreStatus(ctx context.Context) (vectorstore.Stats, error) {
	return f.vectors.Stats(ctx)
}
