package query

import (
	"regexp"

	"github.com/samber/lo"
)

// patientNameRe matches a run of two or more capitalized words in the raw
// (pre-normalization) query, the shape a Spanish patient name takes in
// conversational text ("Juan Pérez"). Names joined by lowercase particles
// are not matched whole: in "María de la Cruz Gómez" only "Cruz Gómez" is
// found.
var patientNameRe = regexp.MustCompile(`\b([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+(?:de|del|la)\s+)?(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)+)\b`)

// extractEntities scans the normalized query with the closed medical
// lexicon and the raw query for capitalized patient names.
func extractEntities(raw, normalized string) Entities {
	var conditions, symptoms, medications, patients []string

	for _, mw := range multiWordEntries {
		if !containsPhrase(normalized, mw.phrase) {
			continue
		}
		switch mw.kind {
		case "condition":
			conditions = append(conditions, mw.phrase)
		case "symptom":
			symptoms = append(symptoms, mw.phrase)
		}
	}

	for _, tok := range tokenize(normalized) {
		if conditionLexicon[tok] {
			conditions = append(conditions, tok)
		}
		if symptomLexicon[tok] {
			symptoms = append(symptoms, tok)
		}
		if medicationLexicon[tok] {
			medications = append(medications, tok)
		}
	}

	patients = append(patients, patientNameRe.FindAllString(raw, -1)...)

	return Entities{
		Patients:    lo.Uniq(patients),
		Conditions:  lo.Uniq(conditions),
		Symptoms:    lo.Uniq(symptoms),
		Medications: lo.Uniq(medications),
	}
}
