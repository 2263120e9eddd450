package objectstore

import (
	"context"
	"strings"

	"clinicrag/internal/config"
	"clinicrag/internal/coreerr"
)

// New resolves the configured raw-blob storage backend, matching the
// records/vectorstore factory style.
func New(ctx context.Context, cfg config.ObjectStoreConfig) (ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, coreerr.New(coreerr.InvalidInput, "unknown object store backend: "+cfg.Backend)
	}
}
