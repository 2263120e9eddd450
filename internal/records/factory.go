package records

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinicrag/internal/coreerr"
)

// New resolves the configured record store backend.
func New(ctx context.Context, backend, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "open postgres pool", err)
		}
		return NewPostgresStore(ctx, pool)
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown record store backend: "+backend)
	}
}
