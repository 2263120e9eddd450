package rag

import (
	"strings"

	"clinicrag/internal/query"
	"clinicrag/internal/retrieve"
)

const (
	similarityWeight     = 0.60
	entityHitWeight      = 0.20
	sourceCountWeight    = 0.15
	incompletenessWeight = 0.05
	minConfidence        = 0.10
	maxConfidence        = 0.95
)

// computeConfidence applies §4.9's formula:
// 0.60·mean(top-k similarity) + 0.20·entity_hit_ratio +
// 0.15·min(|sources|/3,1) − 0.05·incompleteness_flag, clamped to [0.1,0.95].
func computeConfidence(entities query.Entities, results []retrieve.Result) float64 {
	score := similarityWeight*meanSimilarity(results) +
		entityHitWeight*entityHitRatio(entities, results) +
		sourceCountWeight*minFloat(float64(len(results))/3, 1) -
		incompletenessWeight*incompletenessFlag(results)

	if score < minConfidence {
		return minConfidence
	}
	if score > maxConfidence {
		return maxConfidence
	}
	return score
}

func meanSimilarity(results []retrieve.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.BaseSimilarity
	}
	return sum / float64(len(results))
}

// entityHitRatio is the fraction of the query's recognized entities that
// appear somewhere in the retrieved context. A query with no entities at
// all is trivially fully satisfied (ratio 1) rather than penalized for
// having nothing to miss.
func entityHitRatio(entities query.Entities, results []retrieve.Result) float64 {
	all := allEntityStrings(entities)
	if len(all) == 0 {
		return 1
	}
	context := strings.ToLower(aggregateContext(results))
	hits := 0
	for _, e := range all {
		if strings.Contains(context, strings.ToLower(e)) {
			hits++
		}
	}
	return float64(hits) / float64(len(all))
}

func allEntityStrings(e query.Entities) []string {
	var out []string
	out = append(out, e.Patients...)
	out = append(out, e.Conditions...)
	out = append(out, e.Symptoms...)
	out = append(out, e.Medications...)
	return out
}

func aggregateContext(results []retrieve.Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Excerpt)
		b.WriteString(" ")
		for _, v := range r.Metadata {
			b.WriteString(v)
			b.WriteString(" ")
		}
	}
	return b.String()
}

// incompletenessFlag is 1 when retrieval returned nothing to ground an
// answer on, 0 otherwise.
func incompletenessFlag(results []retrieve.Result) float64 {
	if len(results) == 0 {
		return 1
	}
	return 0
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
