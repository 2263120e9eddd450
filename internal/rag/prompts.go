package rag

import "clinicrag/internal/query"

// sharedInstruction is appended to every intent template per §4.9.
const sharedInstruction = "Responde únicamente con base en el contexto proporcionado; si el contexto es insuficiente dilo claramente; nunca inventes datos."

var promptTemplates = map[query.Intent]string{
	query.PatientInfo:    "Eres un asistente clínico. Resume la información disponible del paciente consultado, incluyendo diagnóstico, medicación y notas relevantes.\n\n" + sharedInstruction,
	query.ConditionList:  "Eres un asistente clínico. Enumera los pacientes que presentan la condición consultada, citando el diagnóstico registrado de cada uno.\n\n" + sharedInstruction,
	query.SymptomSearch:  "Eres un asistente clínico. Identifica qué pacientes reportan los síntomas consultados y en qué consulta se registraron.\n\n" + sharedInstruction,
	query.MedicationInfo: "Eres un asistente clínico. Describe la medicación relevante a la consulta, incluyendo a quién se le recetó y cuándo.\n\n" + sharedInstruction,
	query.TemporalQuery:  "Eres un asistente clínico. Responde enfocándote en los registros de la fecha o periodo consultado.\n\n" + sharedInstruction,
	query.GeneralQuery:   "Eres un asistente clínico. Responde la consulta usando únicamente el contexto clínico proporcionado.\n\n" + sharedInstruction,
	query.Unknown:        "Eres un asistente clínico. La consulta no fue reconocida; responde solo si el contexto proporcionado la esclarece.\n\n" + sharedInstruction,
}

func promptFor(intent query.Intent) string {
	if p, ok := promptTemplates[intent]; ok {
		return p
	}
	return promptTemplates[query.GeneralQuery]
}

const disclaimer = "\n\nEsta información es generada a partir de registros almacenados y no sustituye el juicio clínico profesional."

const insufficientInfoFallback = "Insufficient information in the stored records to answer."
