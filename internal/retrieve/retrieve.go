package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"clinicrag/internal/coreerr"
	"clinicrag/internal/providers"
	"clinicrag/internal/query"
	"clinicrag/internal/vectorstore"
)

const (
	generalMinScore = 0.6
	// conditionListPerPatientCap bounds how many hits a single patient can
	// contribute to a ConditionList answer, so one heavily-documented
	// patient can't crowd out everyone else in the list. The spec names
	// "cap per-patient" without a number; 2 keeps the list genuinely
	// multi-patient while still showing corroborating context.
	conditionListPerPatientCap = 2
	// conditionSearchMultiplier widens the raw vector search before the
	// condition-token post-filter narrows it back down, so filtering
	// doesn't starve the final result set.
	conditionSearchMultiplier = 4
)

// Retrieve dispatches on plan.Intent per §4.8, then applies the ranker and
// excerpt builder uniformly to whatever the strategy returned.
func Retrieve(ctx context.Context, plan query.QueryPlan, opts Options, store vectorstore.Store, embedder providers.Embedder) ([]Result, error) {
	now := time.Now()
	k := opts.maxResults()

	var scored []vectorstore.ScoredEntry
	var err error

	switch {
	case plan.Intent == query.PatientInfo && len(plan.Entities.Patients) > 0:
		scored, err = searchByPatient(ctx, store, plan.Entities.Patients[0], k)
	case plan.Intent == query.ConditionList && len(plan.Entities.Conditions) > 0:
		scored, err = searchByCondition(ctx, store, embedder, plan.Entities.Conditions[0], k)
	default:
		scored, err = searchGeneral(ctx, store, embedder, plan.RawQuery, k)
	}
	if err != nil {
		return nil, err
	}

	results := lo.Map(scored, func(s vectorstore.ScoredEntry, _ int) Result {
		return Result{
			VectorID:       s.Entry.VectorID,
			SourceKind:     s.Entry.SourceKind,
			SourceID:       s.Entry.SourceID,
			Metadata:       s.Entry.Metadata,
			BaseSimilarity: s.Score,
			FinalScore:     rank(s, plan.Entities, now),
			Excerpt:        buildExcerpt(s.Entry.PayloadText, plan.SearchTerms),
		}
	})
	sortByFinalScore(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func searchByPatient(ctx context.Context, store vectorstore.Store, patient string, k int) ([]vectorstore.ScoredEntry, error) {
	hits, err := store.SearchByField(ctx, "patient_name", patient, vectorstore.Fuzzy)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "search by patient", err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func searchByCondition(ctx context.Context, store vectorstore.Store, embedder providers.Embedder, condition string, k int) ([]vectorstore.ScoredEntry, error) {
	queryText := fmt.Sprintf("diagnóstico %s enfermedad", condition)
	vec, err := embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "embed condition query", err)
	}
	raw, err := store.Search(ctx, vec, k*conditionSearchMultiplier, nil, 0)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "search by condition", err)
	}

	filtered := lo.Filter(raw, func(s vectorstore.ScoredEntry, _ int) bool {
		return conditionTokenPresent(s.Entry, condition)
	})

	perPatient := map[string]int{}
	capped := make([]vectorstore.ScoredEntry, 0, len(filtered))
	for _, s := range filtered {
		patient := s.Entry.Metadata["patient_name"]
		if patient != "" && perPatient[patient] >= conditionListPerPatientCap {
			continue
		}
		perPatient[patient]++
		capped = append(capped, s)
		if len(capped) >= k {
			break
		}
	}
	return capped, nil
}

func conditionTokenPresent(entry vectorstore.VectorEntry, condition string) bool {
	return containsFold(entry.Metadata["diagnosis"], condition) ||
		containsFold(entry.Metadata["symptoms"], condition) ||
		containsFold(entry.Metadata["conditions"], condition) ||
		containsFold(entry.PayloadText, condition)
}

func searchGeneral(ctx context.Context, store vectorstore.Store, embedder providers.Embedder, rawQuery string, k int) ([]vectorstore.ScoredEntry, error) {
	vec, err := embedder.Embed(ctx, rawQuery)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "embed query", err)
	}
	hits, err := store.Search(ctx, vec, k, nil, generalMinScore)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.Internal, "search", err)
	}
	return hits, nil
}
