package vectorstore

import (
	"strings"
	"unicode/utf8"
)

const maxPayloadChars = 8000

// payloadLabelOrder fixes the serialization order of medical metadata so
// that the same record always produces the same payload text.
var payloadLabelOrder = []struct {
	label string
	key   string
}{
	{"patient", "patient_name"},
	{"diagnosis", "diagnosis"},
	{"medications", "medications"},
	{"symptoms", "symptoms"},
	{"context", "conditions"},
}

// BuildPayloadText concatenates sourceText with a stable serialization of
// metadata and truncates the result at maxPayloadChars on a UTF-8-safe
// boundary.
func BuildPayloadText(sourceText string, metadata map[string]string) string {
	var b strings.Builder
	b.WriteString(sourceText)
	for _, l := range payloadLabelOrder {
		v, ok := metadata[l.key]
		if !ok || v == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(l.label)
		b.WriteString(": ")
		b.WriteString(v)
	}
	return truncateUTF8(b.String(), maxPayloadChars)
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
