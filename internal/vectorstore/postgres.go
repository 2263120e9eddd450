package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinicrag/internal/coreerr"
)

// PostgresStore is the alternative C3 backend over pgvector. Adapted from
// the teacher's postgres_vector.go, generalized to the VectorEntry contract
// and extended with source-kind/source-id columns for DeleteBySource and
// fuzzy SearchByField support.
type PostgresStore struct {
	pool       *pgxpool.Pool
	dimensions int
	metric     string
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, dimensions int, metric string) (*PostgresStore, error) {
	ps := &PostgresStore{pool: pool, dimensions: dimensions, metric: strings.ToLower(strings.TrimSpace(metric))}
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "create pgvector extension", err)
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vector_entries (
		vector_id TEXT PRIMARY KEY,
		source_kind TEXT NOT NULL,
		source_id TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		payload_text TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'
	)`, dimensions)
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "create vector_entries table", err)
	}
	if _, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_vector_entries_source ON vector_entries(source_kind, source_id)`); err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "create source index", err)
	}
	return ps, nil
}

func (p *PostgresStore) Upsert(ctx context.Context, entry VectorEntry) (string, error) {
	if p.dimensions > 0 && len(entry.Embedding) != p.dimensions {
		return "", coreerr.New(coreerr.Internal, "embedding dimension mismatch")
	}
	metaJSON := metadataToJSON(entry.Metadata)
	_, err := p.pool.Exec(ctx, `
		INSERT INTO vector_entries (vector_id, source_kind, source_id, embedding, payload_text, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vector_id) DO UPDATE SET
			source_kind = EXCLUDED.source_kind,
			source_id = EXCLUDED.source_id,
			embedding = EXCLUDED.embedding,
			payload_text = EXCLUDED.payload_text,
			metadata = EXCLUDED.metadata
	`, entry.VectorID, string(entry.SourceKind), entry.SourceID, toVectorLiteral(entry.Embedding), entry.PayloadText, metaJSON)
	if err != nil {
		return "", coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector upsert", err)
	}
	return entry.VectorID, nil
}

func (p *PostgresStore) Delete(ctx context.Context, vectorID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM vector_entries WHERE vector_id = $1`, vectorID)
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector delete", err)
	}
	return nil
}

func (p *PostgresStore) DeleteBySource(ctx context.Context, sourceKind SourceKind, sourceID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM vector_entries WHERE source_kind = $1 AND source_id = $2`, string(sourceKind), sourceID)
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector delete by source", err)
	}
	return nil
}

func (p *PostgresStore) distanceOp() (op, scoreExpr string) {
	switch p.metric {
	case "l2", "euclidean":
		return "<->", "-(embedding <-> $1)"
	case "ip", "dot":
		return "<#>", "-(embedding <#> $1)"
	default:
		return "<=>", "1 - (embedding <=> $1)"
	}
}

func (p *PostgresStore) Search(ctx context.Context, queryVector []float32, k int, filters SearchFilter, minScore float64) ([]ScoredEntry, error) {
	if k <= 0 {
		k = 10
	}
	op, scoreExpr := p.distanceOp()
	query := fmt.Sprintf(`
		SELECT vector_id, source_kind, source_id, payload_text, metadata, %s AS score
		FROM vector_entries
		WHERE ($2::jsonb = '{}'::jsonb OR metadata @> $2::jsonb) AND %s >= $3
		ORDER BY score DESC, metadata->>'date' DESC, source_id ASC
		LIMIT $4
	`, scoreExpr, scoreExpr)
	rows, err := p.pool.Query(ctx, query, toVectorLiteral(queryVector), filtersToJSON(filters), minScore, k)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector search", err)
	}
	defer rows.Close()

	var out []ScoredEntry
	for rows.Next() {
		var e VectorEntry
		var sourceKind string
		var metaJSON []byte
		var score float64
		if err := rows.Scan(&e.VectorID, &sourceKind, &e.SourceID, &e.PayloadText, &metaJSON, &score); err != nil {
			return nil, coreerr.Wrap(coreerr.Internal, "scan pgvector row", err)
		}
		e.SourceKind = SourceKind(sourceKind)
		e.Metadata = jsonToMetadata(metaJSON)
		out = append(out, ScoredEntry{Entry: e, Score: score})
	}
	return out, nil
}

func (p *PostgresStore) SearchByField(ctx context.Context, field, value string, strategy Strategy) ([]ScoredEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT vector_id, source_kind, source_id, payload_text, metadata
		FROM vector_entries
		WHERE metadata ? $1
	`, field)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector search by field", err)
	}
	defer rows.Close()

	var out []ScoredEntry
	for rows.Next() {
		var e VectorEntry
		var sourceKind string
		var metaJSON []byte
		if err := rows.Scan(&e.VectorID, &sourceKind, &e.SourceID, &e.PayloadText, &metaJSON); err != nil {
			return nil, coreerr.Wrap(coreerr.Internal, "scan pgvector row", err)
		}
		e.SourceKind = SourceKind(sourceKind)
		e.Metadata = jsonToMetadata(metaJSON)
		candidate, ok := e.Metadata[field]
		if !ok {
			continue
		}
		var score float64
		if strategy == Exact {
			if candidate == value {
				score = 1.0
			}
		} else {
			score = FuzzyScore(value, candidate)
			if score < DefaultFuzzyThreshold {
				continue
			}
		}
		if score <= 0 {
			continue
		}
		out = append(out, ScoredEntry{Entry: e, Score: score})
	}
	sortScored(out)
	return out, nil
}

func (p *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var count int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vector_entries`).Scan(&count); err != nil {
		return Stats{}, coreerr.Wrap(coreerr.ProviderUnavailable, "pgvector stats", err)
	}
	return Stats{Count: count, Dim: p.dimensions, ModelID: "pgvector"}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func toVectorLiteral(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%f", f)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
