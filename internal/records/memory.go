package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicrag/internal/coreerr"
)

// MemoryStore is an in-memory Store used by tests and the memory backend.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Create(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = Pending
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
	}
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context, filter Filter, page Page) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []Record
	for _, r := range m.records {
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Patient != "" && patientName(r) != filter.Patient {
			continue
		}
		if filter.From != nil && r.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.CreatedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	size := page.Size
	if size <= 0 {
		size = len(matched)
	}
	start := page.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func patientName(r Record) string {
	if r.Structured == nil {
		return ""
	}
	name, _ := r.Structured["name"].(string)
	return name
}

func (m *MemoryStore) Update(_ context.Context, id string, expectedUpdatedAt time.Time, patch Patch) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
	}
	if !rec.UpdatedAt.Equal(expectedUpdatedAt) {
		return Record{}, coreerr.New(coreerr.Conflict, "record was modified concurrently: "+id)
	}
	applyPatch(&rec, patch)
	rec.UpdatedAt = time.Now()
	m.records[id] = rec
	return rec, nil
}

func (m *MemoryStore) Transition(_ context.Context, id string, from, to Status) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, coreerr.New(coreerr.NotFound, "record not found: "+id)
	}
	if rec.Status != from {
		return Record{}, coreerr.New(coreerr.Conflict, "record status is not "+string(from)+": "+id)
	}
	rec.Status = to
	rec.UpdatedAt = time.Now()
	m.records[id] = rec
	return rec, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func applyPatch(rec *Record, patch Patch) {
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.TranscriptText != nil {
		rec.TranscriptText = patch.TranscriptText
	}
	if patch.Structured != nil {
		rec.Structured = patch.Structured
	}
	if patch.Unstructured != nil {
		rec.Unstructured = patch.Unstructured
	}
	if patch.Language != nil {
		rec.Language = patch.Language
	}
	if patch.DurationS != nil {
		rec.DurationS = patch.DurationS
	}
	if patch.Confidence != nil {
		rec.Confidence = patch.Confidence
	}
	if patch.VectorID != nil {
		rec.VectorID = patch.VectorID
	}
	if patch.SpeakerSegs != nil {
		rec.SpeakerSegs = patch.SpeakerSegs
	}
	if patch.SpeakerStats != nil {
		rec.SpeakerStats = patch.SpeakerStats
	}
	if patch.Error != nil {
		rec.Error = patch.Error
	}
	if patch.VectorStored != nil {
		rec.VectorStored = *patch.VectorStored
	}
	if patch.DiarizationProcessed != nil {
		rec.DiarizationProcessed = *patch.DiarizationProcessed
	}
	if patch.ExtractionPartial != nil {
		rec.ExtractionPartial = *patch.ExtractionPartial
	}
	if patch.PageCount != nil {
		rec.PageCount = patch.PageCount
	}
	if patch.OCRConfidence != nil {
		rec.OCRConfidence = patch.OCRConfidence
	}
	if patch.ExtractedText != nil {
		rec.ExtractedText = patch.ExtractedText
	}
	if patch.RecordingID != nil {
		rec.RecordingID = patch.RecordingID
	}
}
