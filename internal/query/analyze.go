package query

import (
	"time"

	"github.com/samber/lo"
)

// Analyze turns a raw chat query into a QueryPlan: normalization, intent
// detection, entity extraction and the residual search terms the retriever
// dispatches on (§4.7).
func Analyze(raw string) QueryPlan {
	normalized := normalize(raw)
	intent := detectIntent(normalized)
	entities := extractEntities(raw, normalized)
	entities.Dates = extractDates(normalized, time.Now())

	return QueryPlan{
		RawQuery:    raw,
		Normalized:  normalized,
		Intent:      intent,
		Entities:    entities,
		Filters:     map[string]string{},
		SearchTerms: searchTerms(normalized, entities),
	}
}

// searchTerms is entities ∪ residual non-stopword tokens, per §4.7.
func searchTerms(normalized string, entities Entities) []string {
	normalizedPatients := lo.Map(entities.Patients, func(p string, _ int) string { return normalize(p) })
	residual := lo.Filter(tokenize(normalized), func(tok string, _ int) bool { return !stopwords[tok] })

	terms := entities.Conditions
	terms = append(terms, entities.Symptoms...)
	terms = append(terms, entities.Medications...)
	terms = append(terms, normalizedPatients...)
	terms = append(terms, entities.Dates...)
	terms = append(terms, residual...)
	return lo.Uniq(lo.Filter(terms, func(t string, _ int) bool { return t != "" }))
}
