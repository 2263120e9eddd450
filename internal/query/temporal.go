package query

import (
	"regexp"
	"time"
)

var isoDateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// relativePhrase maps a normalized phrase to a function computing the date
// it resolves to, relative to now. Every phrase is tested as a whole-word
// match, so "ayer" does not match inside "anteayer"; the list order only
// fixes the order of the returned dates.
var relativePhrases = []struct {
	phrase string
	offset func(now time.Time) time.Time
}{
	{"anteayer", func(now time.Time) time.Time { return now.AddDate(0, 0, -2) }},
	{"ayer", func(now time.Time) time.Time { return now.AddDate(0, 0, -1) }},
	{"hoy", func(now time.Time) time.Time { return now }},
	{"la semana pasada", func(now time.Time) time.Time { return now.AddDate(0, 0, -7) }},
	{"el mes pasado", func(now time.Time) time.Time { return now.AddDate(0, -1, 0) }},
	{"el ano pasado", func(now time.Time) time.Time { return now.AddDate(-1, 0, 0) }},
}

// extractDates finds temporal phrases and ISO dates in the normalized query,
// resolving relative phrases against now so the result is always an
// absolute YYYY-MM-DD string.
func extractDates(normalized string, now time.Time) []string {
	var dates []string
	seen := map[string]bool{}

	for _, m := range isoDateRe.FindAllString(normalized, -1) {
		if !seen[m] {
			seen[m] = true
			dates = append(dates, m)
		}
	}
	for _, rp := range relativePhrases {
		if containsPhrase(normalized, rp.phrase) {
			resolved := rp.offset(now).Format("2006-01-02")
			if !seen[resolved] {
				seen[resolved] = true
				dates = append(dates, resolved)
			}
		}
	}
	return dates
}

func containsPhrase(haystack, phrase string) bool {
	return regexp.MustCompile(`\b`+regexp.QuoteMeta(phrase)+`\b`).MatchString(haystack)
}
