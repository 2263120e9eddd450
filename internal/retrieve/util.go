package retrieve

import (
	"sort"
	"strings"
)

func containsFold(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortByFinalScore orders results by final score descending; ties break by
// date descending then source id, per §4.8.
func sortByFinalScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		di, dj := results[i].Metadata["date"], results[j].Metadata["date"]
		if di != dj {
			return di > dj
		}
		return results[i].SourceID < results[j].SourceID
	})
}
