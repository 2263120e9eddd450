package query

// The medical lexicon is a closed set (Glossary: "Closed set") — entity
// recognition never grows it at runtime. Keys are the normalized (lowercase,
// diacritic-stripped) surface forms seen in Spanish clinical transcripts.

var conditionLexicon = map[string]bool{
	"diabetes":        true,
	"hipertension":    true,
	"asma":            true,
	"obesidad":        true,
	"migrana":         true,
	"artritis":        true,
	"anemia":          true,
	"gastritis":       true,
	"bronquitis":      true,
	"neumonia":        true,
	"covid":           true,
	"gripe":           true,
	"influenza":       true,
	"alergia":         true,
	"depresion":       true,
	"ansiedad":        true,
	"epilepsia":       true,
	"colesterol alto": true,
}

var symptomLexicon = map[string]bool{
	"dolor de cabeza": true,
	"fiebre":          true,
	"tos":             true,
	"nausea":          true,
	"vomito":          true,
	"mareo":           true,
	"fatiga":          true,
	"dolor abdominal": true,
	"dificultad para respirar": true,
	"dolor de garganta":        true,
	"diarrea":                  true,
	"escalofrios":              true,
	"sarpullido":                true,
	"inflamacion":              true,
	"perdida de apetito":        true,
	"insomnio":                  true,
}

var medicationLexicon = map[string]bool{
	"paracetamol":  true,
	"ibuprofeno":   true,
	"amoxicilina":  true,
	"metformina":   true,
	"losartan":     true,
	"omeprazol":    true,
	"aspirina":     true,
	"loratadina":   true,
	"insulina":     true,
	"salbutamol":   true,
	"atorvastatina": true,
	"azitromicina": true,
}

// multiWordEntries lists the lexicon entries that span more than one token.
// The single-token scan cannot see them, so extractEntities matches them as
// whole phrases against the normalized query.
var multiWordEntries = []struct {
	phrase string
	kind   string
}{
	{"dificultad para respirar", "symptom"},
	{"colesterol alto", "condition"},
	{"dolor de cabeza", "symptom"},
	{"dolor abdominal", "symptom"},
	{"dolor de garganta", "symptom"},
	{"perdida de apetito", "symptom"},
}

var stopwords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "de": true, "del": true,
	"un": true, "una": true, "unos": true, "unas": true, "y": true, "o": true,
	"que": true, "en": true, "con": true, "por": true, "para": true, "es": true,
	"son": true, "a": true, "al": true, "su": true, "sus": true,
	"me": true, "se": true, "lo": true, "le": true, "les": true, "mi": true,
	"tiene": true, "tengo": true, "esta": true, "este": true, "esa": true,
	"ese": true, "como": true, "cuando": true, "donde": true,
	"cual": true, "cuales": true, "quien": true, "quienes": true,
}
