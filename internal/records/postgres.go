package records

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinicrag/internal/coreerr"
)

// PostgresStore is a relational C2 backend. Schema follows §6: one table
// for both Recording and Document rows, JSON columns for structured maps
// and speaker data, secondary indexes on status, created_at and patient
// name. Grounded on the teacher's chat_store_postgres.go Init/CAS idiom.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	filename TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	mime TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	transcript_text TEXT,
	structured JSONB,
	unstructured JSONB,
	language TEXT,
	duration_s DOUBLE PRECISION,
	confidence DOUBLE PRECISION,
	vector_id TEXT,
	speaker_segments JSONB,
	speaker_stats JSONB,
	error TEXT,
	vector_stored BOOLEAN NOT NULL DEFAULT FALSE,
	diarization_processed BOOLEAN NOT NULL DEFAULT FALSE,
	extraction_partial BOOLEAN NOT NULL DEFAULT FALSE,
	file_kind TEXT,
	page_count INT,
	ocr_confidence DOUBLE PRECISION,
	extracted_text TEXT,
	recording_id TEXT
);

CREATE INDEX IF NOT EXISTS records_status_idx ON records(status);
CREATE INDEX IF NOT EXISTS records_created_at_idx ON records(created_at DESC);
CREATE INDEX IF NOT EXISTS records_patient_idx ON records((structured->>'name'));
`)
	if err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "init records schema", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = Pending
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO records (id, kind, filename, size_bytes, mime, status, created_at, updated_at, file_kind)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.ID, string(rec.Kind), rec.Filename, rec.SizeBytes, rec.Mime, string(rec.Status), rec.CreatedAt, rec.UpdatedAt, string(rec.FileKind))
	if err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "insert record", err)
	}
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
		}
		return Record{}, coreerr.Wrap(coreerr.Internal, "scan record", err)
	}
	return rec, nil
}

const selectColumns = `
	SELECT id, kind, filename, size_bytes, mime, status, created_at, updated_at,
		transcript_text, structured, unstructured, language, duration_s, confidence,
		vector_id, speaker_segments, speaker_stats, error,
		vector_stored, diarization_processed, extraction_partial,
		file_kind, page_count, ocr_confidence, extracted_text, recording_id
	FROM records`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var kind, status, fileKind string
	var structuredJSON, unstructuredJSON, segmentsJSON, statsJSON []byte
	if err := row.Scan(
		&r.ID, &kind, &r.Filename, &r.SizeBytes, &r.Mime, &status, &r.CreatedAt, &r.UpdatedAt,
		&r.TranscriptText, &structuredJSON, &unstructuredJSON, &r.Language, &r.DurationS, &r.Confidence,
		&r.VectorID, &segmentsJSON, &statsJSON, &r.Error,
		&r.VectorStored, &r.DiarizationProcessed, &r.ExtractionPartial,
		&fileKind, &r.PageCount, &r.OCRConfidence, &r.ExtractedText, &r.RecordingID,
	); err != nil {
		return Record{}, err
	}
	r.Kind = Kind(kind)
	r.Status = Status(status)
	r.FileKind = FileKind(fileKind)
	if len(structuredJSON) > 0 {
		_ = json.Unmarshal(structuredJSON, &r.Structured)
	}
	if len(unstructuredJSON) > 0 {
		_ = json.Unmarshal(unstructuredJSON, &r.Unstructured)
	}
	if len(segmentsJSON) > 0 {
		_ = json.Unmarshal(segmentsJSON, &r.SpeakerSegs)
	}
	if len(statsJSON) > 0 {
		_ = json.Unmarshal(statsJSON, &r.SpeakerStats)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter, page Page) ([]Record, error) {
	query := selectColumns + ` WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR status = $2)
		AND ($3 = '' OR structured->>'name' = $3)
		AND ($4::timestamptz IS NULL OR created_at >= $4)
		AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC, id
		OFFSET $6 LIMIT $7`
	size := page.Size
	if size <= 0 {
		size = 100
	}
	rows, err := s.pool.Query(ctx, query, string(filter.Kind), string(filter.Status), filter.Patient, filter.From, filter.To, page.Offset, size)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "list records", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, coreerr.Wrap(coreerr.Internal, "scan record", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, expectedUpdatedAt time.Time, patch Patch) (Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
		}
		return Record{}, coreerr.Wrap(coreerr.Internal, "scan record", err)
	}
	if !rec.UpdatedAt.Equal(expectedUpdatedAt) {
		return Record{}, coreerr.New(coreerr.Conflict, "record was modified concurrently: "+id)
	}
	applyPatch(&rec, patch)
	rec.UpdatedAt = time.Now()

	structuredJSON, _ := json.Marshal(rec.Structured)
	unstructuredJSON, _ := json.Marshal(rec.Unstructured)
	segmentsJSON, _ := json.Marshal(rec.SpeakerSegs)
	statsJSON, _ := json.Marshal(rec.SpeakerStats)

	_, err = tx.Exec(ctx, `
		UPDATE records SET status=$2, updated_at=$3, transcript_text=$4, structured=$5, unstructured=$6,
			language=$7, duration_s=$8, confidence=$9, vector_id=$10, speaker_segments=$11, speaker_stats=$12,
			error=$13, vector_stored=$14, diarization_processed=$15, extraction_partial=$16,
			page_count=$17, ocr_confidence=$18, extracted_text=$19, recording_id=$20
		WHERE id=$1
	`, id, string(rec.Status), rec.UpdatedAt, rec.TranscriptText, structuredJSON, unstructuredJSON,
		rec.Language, rec.DurationS, rec.Confidence, rec.VectorID, segmentsJSON, statsJSON,
		rec.Error, rec.VectorStored, rec.DiarizationProcessed, rec.ExtractionPartial,
		rec.PageCount, rec.OCRConfidence, rec.ExtractedText, rec.RecordingID)
	if err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "update record", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "commit update", err)
	}
	return rec, nil
}

func (s *PostgresStore) Transition(ctx context.Context, id string, from, to Status) (Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "begin tx", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
		}
		return Record{}, coreerr.Wrap(coreerr.Internal, "scan record", err)
	}
	if rec.Status != from {
		return Record{}, coreerr.New(coreerr.Conflict, "record status is not "+string(from)+": "+id)
	}
	rec.Status = to
	rec.UpdatedAt = time.Now()
	if _, err := tx.Exec(ctx, `UPDATE records SET status=$2, updated_at=$3 WHERE id=$1`, id, string(to), rec.UpdatedAt); err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "transition record", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, coreerr.Wrap(coreerr.ProviderUnavailable, "commit transition", err)
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM records WHERE id = $1`, id); err != nil {
		return coreerr.Wrap(coreerr.ProviderUnavailable, "delete record", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
