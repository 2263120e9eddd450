package rag

import (
	"fmt"

	"clinicrag/internal/query"
)

const maxFollowUps = 3

// followUpSuggestions returns an intent-specific templated set,
// parameterized with observed entities and capped at maxFollowUps (§4.9).
func followUpSuggestions(plan query.QueryPlan) []string {
	var out []string
	add := func(s string) {
		if len(out) < maxFollowUps {
			out = append(out, s)
		}
	}

	switch plan.Intent {
	case query.PatientInfo:
		for _, p := range plan.Entities.Patients {
			add(fmt.Sprintf("¿Qué medicación toma %s?", p))
			add(fmt.Sprintf("¿Cuál fue la última consulta de %s?", p))
		}
		add("¿Hay síntomas reportados recientemente?")
	case query.ConditionList:
		for _, c := range plan.Entities.Conditions {
			add(fmt.Sprintf("¿Qué medicación se receta para %s?", c))
		}
		add("¿Qué pacientes presentan síntomas relacionados?")
	case query.SymptomSearch:
		for _, s := range plan.Entities.Symptoms {
			add(fmt.Sprintf("¿Qué diagnóstico se asoció con %s?", s))
		}
		add("¿Cuándo se reportaron estos síntomas?")
	case query.MedicationInfo:
		for _, m := range plan.Entities.Medications {
			add(fmt.Sprintf("¿A qué pacientes se les recetó %s?", m))
		}
		add("¿Qué dosis se registró?")
	case query.TemporalQuery:
		add("¿Qué ocurrió antes de esa fecha?")
		add("¿Hay registros posteriores relacionados?")
	default:
		add("¿Quieres buscar por paciente, condición o síntoma?")
	}

	return out
}
