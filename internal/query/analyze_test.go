package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_NormalizesDiacriticsAndCase(t *testing.T) {
	plan := Analyze("¿Qué MEDICAMENTOS   toma María?")
	assert.NotContains(t, plan.Normalized, "é")
	assert.NotContains(t, plan.Normalized, "Í")
	assert.Equal(t, plan.Normalized, normalize(plan.Normalized), "already-normalized text is idempotent")
}

func TestAnalyze_PatientInfoIntent(t *testing.T) {
	plan := Analyze("Dame información de Juan Pérez")
	assert.Equal(t, PatientInfo, plan.Intent)
	assert.Contains(t, plan.Entities.Patients, "Juan Pérez")
}

func TestAnalyze_ConditionListIntent(t *testing.T) {
	plan := Analyze("¿Qué pacientes tienen diabetes?")
	assert.Equal(t, ConditionList, plan.Intent)
	assert.Contains(t, plan.Entities.Conditions, "diabetes")
}

func TestAnalyze_SymptomSearchIntent(t *testing.T) {
	plan := Analyze("¿Quién presenta dolor de cabeza y fiebre?")
	assert.Equal(t, SymptomSearch, plan.Intent)
	assert.Contains(t, plan.Entities.Symptoms, "dolor de cabeza")
	assert.Contains(t, plan.Entities.Symptoms, "fiebre")
}

func TestAnalyze_MedicationInfoIntent(t *testing.T) {
	plan := Analyze("¿Qué medicamento le recetaron a Ana?")
	assert.Equal(t, MedicationInfo, plan.Intent)
}

func TestAnalyze_TemporalQueryIntent(t *testing.T) {
	plan := Analyze("¿Qué pasó ayer con el paciente?")
	assert.Equal(t, TemporalQuery, plan.Intent)
	assert.Len(t, plan.Entities.Dates, 1)
}

func TestAnalyze_ISODateRecognized(t *testing.T) {
	plan := Analyze("Muéstrame los registros del 2026-01-15")
	assert.Equal(t, TemporalQuery, plan.Intent)
	assert.Contains(t, plan.Entities.Dates, "2026-01-15")
}

func TestAnalyze_GeneralQueryFallback(t *testing.T) {
	plan := Analyze("hola buenos dias")
	assert.Equal(t, GeneralQuery, plan.Intent)
}

func TestAnalyze_EmptyQueryIsUnknown(t *testing.T) {
	plan := Analyze("   ")
	assert.Equal(t, Unknown, plan.Intent)
}

func TestAnalyze_SearchTermsIncludeEntitiesAndResidualTokens(t *testing.T) {
	plan := Analyze("paciente con diabetes y tos persistente")
	assert.Contains(t, plan.SearchTerms, "diabetes")
	assert.Contains(t, plan.SearchTerms, "tos")
	assert.Contains(t, plan.SearchTerms, "persistente")
	assert.NotContains(t, plan.SearchTerms, "con")
	assert.NotContains(t, plan.SearchTerms, "y")
}

func TestAnalyze_FirstMatchingIntentWins(t *testing.T) {
	// Contains both a symptom-search cue and a medication cue; symptom
	// rules are ordered first so they win.
	plan := Analyze("¿Quién tiene sintomas y qué medicamento toma?")
	assert.Equal(t, SymptomSearch, plan.Intent)
}
