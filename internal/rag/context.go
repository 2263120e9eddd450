package rag

import (
	"fmt"
	"strings"

	"clinicrag/internal/retrieve"
)

const maxContextChars = 4000

// structuredMetadataOrder fixes which metadata keys are surfaced alongside
// each excerpt and in what order, mirroring the payload builder's own
// stable ordering in internal/vectorstore.
var structuredMetadataOrder = []string{"patient_name", "date", "diagnosis", "medications", "symptoms"}

// assembleContext builds the ordered excerpt-plus-metadata block the
// generator grounds its answer on, capped at maxContextChars (§4.9).
func assembleContext(results []retrieve.Result) string {
	var b strings.Builder
	for i, r := range results {
		block := formatContextBlock(i+1, r)
		if b.Len()+len(block) > maxContextChars {
			remaining := maxContextChars - b.Len()
			if remaining > 0 {
				b.WriteString(block[:remaining])
			}
			break
		}
		b.WriteString(block)
	}
	return b.String()
}

func formatContextBlock(index int, r retrieve.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s\n", index, r.Excerpt)
	for _, key := range structuredMetadataOrder {
		if v := r.Metadata[key]; v != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}
	b.WriteString("\n")
	return b.String()
}
