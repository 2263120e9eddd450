package ingestion

import (
	"context"
	"time"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/records"
	"clinicrag/internal/vectorstore"
)

const ocrTimeout = 120 * time.Second

// runDocumentPipeline drives a Document from Pending through
// Completed/Failed per §4.6's document pipeline: OCR/PDF extraction,
// metadata extraction, index, fuzzy-link to an existing Recording.
// overrideOCRConfidence lets the caller admit a low-confidence image OCR
// result per §4.6 step 2 / §8's "unless overridden" boundary instead of
// rejecting it outright.
func (o *Orchestrator) runDocumentPipeline(ctx context.Context, rec records.Record, data []byte, fileKind records.FileKind, overrideOCRConfidence bool) {
	rec, err := o.store.Transition(ctx, rec.ID, records.Pending, records.Transcribing)
	if err != nil {
		return
	}

	ocrCtx, cancel := context.WithTimeout(ctx, ocrTimeout)
	text, pageCount, ocrConfidence, err := o.runOCR(ocrCtx, data, fileKind, overrideOCRConfidence)
	cancel()
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		ExtractedText: &text,
		PageCount:     &pageCount,
		OCRConfidence: &ocrConfidence,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Transition(ctx, rec.ID, records.Transcribing, records.Extracting)
	if err != nil {
		return
	}

	llmCtx, cancel2 := context.WithTimeout(ctx, llmTimeout)
	structured, extractErr := o.extractor.ExtractDocumentMetadata(llmCtx, text)
	cancel2()
	if extractErr != nil && coreerr.KindOf(extractErr) != coreerr.Internal {
		o.fail(ctx, rec, extractErr)
		return
	}
	extractionPartial := len(structured) == 0 && text != ""
	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
		Structured:        structured,
		ExtractionPartial: &extractionPartial,
	})
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	rec, err = o.store.Transition(ctx, rec.ID, records.Extracting, records.Indexing)
	if err != nil {
		return
	}

	vectorID, vectorStored := o.indexRecord(ctx, rec, vectorstore.SourceDocument, text, structured, nil)
	patch := records.Patch{VectorStored: &vectorStored}
	if vectorStored {
		patch.VectorID = &vectorID
	}
	rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, patch)
	if err != nil {
		o.fail(ctx, rec, err)
		return
	}

	if patientName, ok := structured["name"].(string); ok && patientName != "" {
		if linkedID, found := o.findFuzzyRecordingMatch(ctx, patientName); found {
			rec, err = o.store.Update(ctx, rec.ID, rec.UpdatedAt, records.Patch{
				RecordingID: &linkedID,
			})
			if err != nil {
				o.fail(ctx, rec, err)
				return
			}
		}
	}

	if _, err := o.store.Transition(ctx, rec.ID, records.Indexing, records.Completed); err != nil {
		return
	}
}

func (o *Orchestrator) runOCR(ctx context.Context, data []byte, fileKind records.FileKind, overrideConfidence bool) (string, int, float64, error) {
	switch fileKind {
	case records.FileKindPdf:
		res, err := o.ocr.ExtractPdf(ctx, data, maxOCRPages)
		if err != nil {
			return "", 0, 0, err
		}
		return res.Text, res.PageCount, 1.0, nil
	case records.FileKindImage:
		res, err := o.ocr.ExtractImage(ctx, data, "")
		if err != nil {
			return "", 0, 0, err
		}
		if res.Confidence < minOCRConfidence && !overrideConfidence {
			return "", 0, 0, coreerr.New(coreerr.InvalidMedia, "OCR confidence below threshold")
		}
		return res.Text, 0, res.Confidence, nil
	default:
		return "", 0, 0, coreerr.New(coreerr.InvalidInput, "unknown document file kind")
	}
}

// findFuzzyRecordingMatch looks up existing Recordings by patient name and
// links to the single best match at or above the 0.85 threshold, per
// §4.6 step 5 and the single-best-match decision.
func (o *Orchestrator) findFuzzyRecordingMatch(ctx context.Context, patientName string) (string, bool) {
	recs, err := o.store.List(ctx, records.Filter{Kind: records.KindRecording}, records.Page{Size: 500})
	if err != nil {
		return "", false
	}
	const linkThreshold = 0.85
	bestScore := 0.0
	bestID := ""
	for _, r := range recs {
		candidate, _ := r.Structured["name"].(string)
		if candidate == "" {
			continue
		}
		score := vectorstore.FuzzyScore(patientName, candidate)
		if score >= linkThreshold && score > bestScore {
			bestScore = score
			bestID = r.ID
		}
	}
	return bestID, bestID != ""
}
