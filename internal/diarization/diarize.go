package diarization

import (
	"strings"

	"clinicrag/internal/providers"
	"clinicrag/internal/records"
)

// Config controls the thresholds the diarizer applies.
type Config struct {
	MinSegmentSeconds float64
}

const (
	audioWeight       = 0.3
	textWeight        = 0.7
	decisionThreshold = 0.2
	confidenceBonus   = 0.2
	noAudioConfCap    = 0.8
)

// Diarize assigns a Promotor/Patient/Unknown role to each ASR segment,
// combining acoustic clustering (when audio is available) with text
// pattern scoring, and returns per-role duration/turn statistics.
// Diarization failure is non-fatal from the caller's perspective: it
// returns an error so the orchestrator can flag the record rather than
// fail it.
func Diarize(cfg Config, audio []byte, segments []providers.ASRSegment) ([]records.SpeakerSegment, records.SpeakerStats, error) {
	minSegmentS := cfg.MinSegmentSeconds
	if minSegmentS <= 0 {
		minSegmentS = 1.0
	}
	if len(segments) == 0 {
		return nil, records.SpeakerStats{}, nil
	}

	textScores := make([]float64, len(segments))
	for i, seg := range segments {
		textScores[i] = textScore(seg.Text)
	}

	duration := segments[len(segments)-1].TEnd - segments[0].TStart
	if duration < minSegmentS && len(segments) == 1 {
		single := []records.SpeakerSegment{singleUnknownSegment(segments)}
		return single, buildStats(single), nil
	}

	samples, sampleRate, ok := decodeWAV(audio)
	var audioScores []float64
	if ok && len(samples) > 0 {
		audioScores = computeAudioScores(samples, sampleRate, segments, textScores)
	}

	out := make([]records.SpeakerSegment, len(segments))
	for i, seg := range segments {
		combined := textScores[i]
		capConfidence := noAudioConfCap
		if audioScores != nil {
			combined = audioWeight*audioScores[i] + textWeight*textScores[i]
			capConfidence = 1.0
		}

		speaker := records.SpeakerUnknown
		switch {
		case combined > decisionThreshold:
			speaker = records.SpeakerPromotor
		case combined < -decisionThreshold:
			speaker = records.SpeakerPatient
		}

		confidence := combined
		if confidence < 0 {
			confidence = -confidence
		}
		if hasUnambiguousPattern(seg.Text) {
			confidence += confidenceBonus
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence > capConfidence {
			confidence = capConfidence
		}

		out[i] = records.SpeakerSegment{
			Speaker:    speaker,
			Text:       seg.Text,
			TStart:     seg.TStart,
			TEnd:       seg.TEnd,
			Confidence: confidence,
			WordCount:  countWords(seg.Text),
		}
	}

	merged := mergeShortSegments(out, minSegmentS)
	return merged, buildStats(merged), nil
}

// computeAudioScores clusters the per-segment acoustic features into two
// groups and resolves which cluster is Promotor by picking the
// cluster-to-role mapping that best agrees with the text scores across the
// whole recording, per the combined-score design.
func computeAudioScores(samples []float64, sampleRate int, segments []providers.ASRSegment, textScores []float64) []float64 {
	raw := make([]featureVector, len(segments))
	for i, seg := range segments {
		raw[i] = extractFeatures(samples, sampleRate, seg.TStart, seg.TEnd)
	}
	normalized := normalizeFeatures(raw)
	labels, _ := clusterK2(normalized)
	if labels == nil {
		return nil
	}

	var agreementIfCluster0IsPromotor, agreementIfCluster1IsPromotor float64
	for i, label := range labels {
		sign := 1.0
		if label == 1 {
			sign = -1.0
		}
		agreementIfCluster0IsPromotor += sign * textScores[i]
		agreementIfCluster1IsPromotor -= sign * textScores[i]
	}

	cluster0IsPromotor := agreementIfCluster0IsPromotor >= agreementIfCluster1IsPromotor

	scores := make([]float64, len(segments))
	for i, label := range labels {
		isPromotor := (label == 0) == cluster0IsPromotor
		if isPromotor {
			scores[i] = 1
		} else {
			scores[i] = -1
		}
	}
	return scores
}

func countWords(text string) int {
	fields := strings.Fields(text)
	return len(fields)
}

func singleUnknownSegment(segments []providers.ASRSegment) records.SpeakerSegment {
	var text strings.Builder
	for i, seg := range segments {
		if i > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(seg.Text)
	}
	return records.SpeakerSegment{
		Speaker:    records.SpeakerUnknown,
		Text:       text.String(),
		TStart:     segments[0].TStart,
		TEnd:       segments[len(segments)-1].TEnd,
		Confidence: 0,
		WordCount:  countWords(text.String()),
	}
}

// mergeShortSegments folds each segment into the preceding one when both
// have the same role and either of the two is shorter than minSegmentS. A
// short segment whose neighbours have a different role is kept as is.
func mergeShortSegments(segs []records.SpeakerSegment, minSegmentS float64) []records.SpeakerSegment {
	if len(segs) <= 1 {
		return segs
	}
	merged := make([]records.SpeakerSegment, 0, len(segs))
	merged = append(merged, segs[0])
	for i := 1; i < len(segs); i++ {
		cur := segs[i]
		last := &merged[len(merged)-1]
		curDur := cur.TEnd - cur.TStart
		lastDur := last.TEnd - last.TStart
		if curDur < minSegmentS && last.Speaker == cur.Speaker {
			mergeInto(last, cur)
			continue
		}
		if lastDur < minSegmentS && len(merged) >= 1 && cur.Speaker == last.Speaker {
			mergeInto(last, cur)
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

func mergeInto(into *records.SpeakerSegment, other records.SpeakerSegment) {
	into.Text = into.Text + " " + other.Text
	if other.TEnd > into.TEnd {
		into.TEnd = other.TEnd
	}
	if other.TStart < into.TStart {
		into.TStart = other.TStart
	}
	into.WordCount += other.WordCount
	if other.Confidence > into.Confidence {
		into.Confidence = other.Confidence
	}
}

func buildStats(segs []records.SpeakerSegment) records.SpeakerStats {
	totals := map[records.Speaker]float64{}
	var changeCount int
	var totalLen float64
	var prevSpeaker records.Speaker
	for i, seg := range segs {
		dur := seg.TEnd - seg.TStart
		totals[seg.Speaker] += dur
		totalLen += dur
		if i > 0 && seg.Speaker != prevSpeaker {
			changeCount++
		}
		prevSpeaker = seg.Speaker
	}
	avg := 0.0
	if len(segs) > 0 {
		avg = totalLen / float64(len(segs))
	}
	return records.SpeakerStats{
		TotalsBySpeaker:    totals,
		ChangeCount:        changeCount,
		AverageSegmentLenS: avg,
	}
}
