package vectorstore

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// New resolves the configured backend. Unknown backend names are rejected
// rather than silently falling back, matching the teacher's factory style.
func New(ctx context.Context, cfg config.VectorConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryStore(cfg.Dimensions), nil
	case "qdrant":
		return NewQdrantStore(cfg.DSN, cfg.Collection, cfg.Dimensions, cfg.Metric)
	case "postgres", "pgvector":
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "open postgres pool", err)
		}
		return NewPostgresStore(ctx, pool, cfg.Dimensions, cfg.Metric)
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown vector backend: "+cfg.Backend)
	}
}
