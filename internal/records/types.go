// Package records implements the C2 record store: durable, transactional
// metadata for ingestion records (Recording, Document), their status
// lifecycle, and the extracted fields the orchestrator fills in as each
// pipeline stage completes.
package records

import "time"

// Status is the closed set of lifecycle states shared by Recording and
// Document. Status advances only forward except to Failed.
type Status string

const (
	Pending      Status = "Pending"
	Transcribing Status = "Transcribing"
	Extracting   Status = "Extracting"
	Diarizing    Status = "Diarizing"
	Indexing     Status = "Indexing"
	Completed    Status = "Completed"
	Failed       Status = "Failed"
)

// Kind distinguishes the two record types stored in the same table.
type Kind string

const (
	KindRecording Kind = "Recording"
	KindDocument  Kind = "Document"
)

// FileKind classifies a Document's source file.
type FileKind string

const (
	FileKindPdf   FileKind = "Pdf"
	FileKindImage FileKind = "Image"
)

// Speaker is the closed set of diarization roles.
type Speaker string

const (
	SpeakerPromotor Speaker = "Promotor"
	SpeakerPatient  Speaker = "Patient"
	SpeakerUnknown  Speaker = "Unknown"
	SpeakerMultiple Speaker = "Multiple"
)

// SpeakerSegment is one timed, attributed span of a transcript.
type SpeakerSegment struct {
	Speaker    Speaker `json:"speaker"`
	Text       string  `json:"text"`
	TStart     float64 `json:"t_start"`
	TEnd       float64 `json:"t_end"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`
}

// SpeakerStats is derived from SpeakerSegment slices at diarization time.
type SpeakerStats struct {
	TotalsBySpeaker     map[Speaker]float64 `json:"totals_by_speaker"`
	ChangeCount         int                 `json:"change_count"`
	AverageSegmentLenS  float64             `json:"average_segment_len_s"`
}

// Record is the unified storage row for both Recording and Document. Kind
// selects which attribute subset is meaningful; both share the common
// lifecycle fields.
type Record struct {
	ID        string
	Kind      Kind
	Filename  string
	SizeBytes int64
	Mime      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	TranscriptText *string
	Structured     map[string]any
	Unstructured   map[string]any
	Language       *string
	DurationS      *float64
	Confidence     *float64
	VectorID       *string
	SpeakerSegs    []SpeakerSegment
	SpeakerStats   *SpeakerStats
	Error          *string

	// Soft-error bookkeeping: a stage can fail without failing the whole
	// record; these flags record which stages degraded.
	VectorStored         bool
	DiarizationProcessed bool
	ExtractionPartial    bool

	// Document-only fields.
	FileKind      FileKind
	PageCount     *int
	OCRConfidence *float64
	ExtractedText *string
	RecordingID   *string
}

// Filter narrows List results. Zero-valued fields are unconstrained.
type Filter struct {
	Kind    Kind
	Status  Status
	Patient string
	From    *time.Time
	To      *time.Time
}

// Page controls List pagination.
type Page struct {
	Offset int
	Size   int
}

// Patch is a partial update applied via compare-and-swap on UpdatedAt.
type Patch struct {
	Status         *Status
	TranscriptText *string
	Structured     map[string]any
	Unstructured   map[string]any
	Language       *string
	DurationS      *float64
	Confidence     *float64
	VectorID       *string
	SpeakerSegs    []SpeakerSegment
	SpeakerStats   *SpeakerStats
	Error          *string

	VectorStored         *bool
	DiarizationProcessed *bool
	ExtractionPartial    *bool

	PageCount     *int
	OCRConfidence *float64
	ExtractedText *string
	RecordingID   *string
}
