package diarization

import "strings"

// promotorPatterns are phrase fragments typical of the health promoter's
// side of a Spanish clinical interview: opening the visit, asking
// structured questions, giving instructions.
var promotorPatterns = []string{
	"buenos días", "buenas tardes", "¿cómo se llama",
	"¿cuántos años tiene", "¿desde cuándo", "¿qué síntomas",
	"¿me puede decir", "vamos a revisar", "le voy a recetar",
	"le recomiendo", "necesito que", "¿ha tenido", "¿toma algún medicamento",
	"¿es alérgico", "tome esta medicina", "vuelva en",
}

// patientPatterns are phrase fragments typical of the patient's side:
// reporting symptoms, answering in first person, expressing discomfort.
var patientPatterns = []string{
	"me duele", "me siento", "tengo dolor", "desde hace",
	"no puedo dormir", "me dio fiebre", "yo tengo", "me llamo",
	"tengo años", "no he tomado", "me recetaron", "siento que",
	"gracias doctor", "gracias doctora",
}

// medicalKeywords skew toward the promoter's professional register.
var medicalKeywords = []string{
	"diagnóstico", "receta", "tratamiento", "dosis", "síntomas",
	"presión arterial", "temperatura", "consulta", "expediente",
	"antecedentes", "exploración", "medicamento", "pastillas", "análisis",
}

// personalKeywords skew toward the patient's first-person register.
var personalKeywords = []string{
	"mi casa", "mi familia", "mi trabajo", "mi esposo", "mi esposa",
	"mi hijo", "mi hija", "dinero", "trabajo", "descansar",
}

// textScore computes the [-1,+1] text evidence score for a transcript
// segment per the Promotor/Patient pattern and keyword tally, normalized
// by the total number of hits so a segment dominated by either side pulls
// toward its extreme regardless of segment length.
func textScore(text string) float64 {
	lower := strings.ToLower(text)

	var promotorScore, patientScore float64
	for _, p := range promotorPatterns {
		if strings.Contains(lower, p) {
			promotorScore++
		}
	}
	for _, p := range patientPatterns {
		if strings.Contains(lower, p) {
			patientScore++
		}
	}
	for _, k := range medicalKeywords {
		if strings.Contains(lower, k) {
			promotorScore += 0.5
		}
	}
	for _, k := range personalKeywords {
		if strings.Contains(lower, k) {
			patientScore += 0.5
		}
	}

	total := promotorScore + patientScore
	if total == 0 {
		return 0
	}
	return (promotorScore - patientScore) / total
}

// hasUnambiguousPattern reports whether the segment contains at least one
// exact Promotor or Patient phrase pattern (as opposed to only a weaker
// keyword hit), used to award the confidence bonus.
func hasUnambiguousPattern(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range promotorPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, p := range patientPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
