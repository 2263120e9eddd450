package retrieve

import "strings"

const excerptWindow = 300

// buildExcerpt selects a window of up to excerptWindow characters centered
// on the first occurrence of any search term, else the head of payload.
func buildExcerpt(payload string, searchTerms []string) string {
	if len(payload) <= excerptWindow {
		return payload
	}

	idx := firstHitIndex(payload, searchTerms)
	if idx < 0 {
		return payload[:excerptWindow]
	}

	half := excerptWindow / 2
	start := idx - half
	if start < 0 {
		start = 0
	}
	end := start + excerptWindow
	if end > len(payload) {
		end = len(payload)
		start = end - excerptWindow
		if start < 0 {
			start = 0
		}
	}
	return payload[start:end]
}

func firstHitIndex(payload string, searchTerms []string) int {
	lower := strings.ToLower(payload)
	best := -1
	for _, term := range searchTerms {
		if term == "" {
			continue
		}
		if i := strings.Index(lower, strings.ToLower(term)); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}
