package api

import (
	"context"

	"clinicrag/internal/records"
)

// RecordStoreHealthChecker adapts records.Store to HealthChecker with a
// cheap bounded List call, mirroring the db.Ping() liveness check pattern
// (user_auth.go) rather than a no-op — a dead connection pool still
// returns quickly from a 1-row query.
type RecordStoreHealthChecker struct {
	Store records.Store
}

func (c RecordStoreHealthChecker) Ping(ctx context.Context) error {
	_, err := c.Store.List(ctx, records.Filter{}, records.Page{Size: 1})
	return err
}

// EmbedderHealthChecker adapts providers.Embedder to HealthChecker by
// embedding a short fixed probe string. Embedding is cheaper than a chat
// completion, so the embedder gets a real liveness check; the LLM does not
// get one here (a Complete() probe would cost a full generation call on
// every health poll) and is left for the operator's provider-side monitoring.
type EmbedderHealthChecker struct {
	Embedder interface {
		Embed(ctx context.Context, text string) ([]float32, error)
	}
}

func (c EmbedderHealthChecker) Ping(ctx context.Context) error {
	_, err := c.Embedder.Embed(ctx, "health check probe")
	return err
}
