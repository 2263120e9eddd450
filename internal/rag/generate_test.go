package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicrag/internal/providers"
	"clinicrag/internal/query"
	"clinicrag/internal/retrieve"
	"clinicrag/internal/vectorstore"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, msgs []providers.Message, params providers.CompletionParams) (string, error) {
	return f.response, f.err
}

func TestGenerate_AppendsDisclaimerAndTrims(t *testing.T) {
	plan := query.Analyze("información de Juan Pérez")
	results := []retrieve.Result{{
		SourceKind: vectorstore.SourceRecording, SourceID: "r1",
		Excerpt: "Paciente estable.", BaseSimilarity: 0.8,
		Metadata: map[string]string{"patient_name": "Juan Pérez"},
	}}
	out, err := Generate(context.Background(), plan, results, &fakeLLM{response: "El paciente está estable."})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.Answer, disclaimer))
	assert.Contains(t, out.Answer, "El paciente está estable.")
	assert.Len(t, out.Sources, 1)
}

func TestGenerate_EmptyAnswerFallsBack(t *testing.T) {
	plan := query.Analyze("hola")
	out, err := Generate(context.Background(), plan, nil, &fakeLLM{response: "   "})
	require.NoError(t, err)
	assert.Equal(t, insufficientInfoFallback, out.Answer)
}

func TestGenerate_ConfidenceClampedToRange(t *testing.T) {
	plan := query.Analyze("¿Qué pacientes tienen diabetes?")
	results := []retrieve.Result{
		{BaseSimilarity: 1.0, Excerpt: "diabetes confirmada", Metadata: map[string]string{"diagnosis": "diabetes"}},
		{BaseSimilarity: 1.0, Excerpt: "diabetes confirmada", Metadata: map[string]string{"diagnosis": "diabetes"}},
		{BaseSimilarity: 1.0, Excerpt: "diabetes confirmada", Metadata: map[string]string{"diagnosis": "diabetes"}},
	}
	out, err := Generate(context.Background(), plan, results, &fakeLLM{response: "Varios pacientes."})
	require.NoError(t, err)
	assert.LessOrEqual(t, out.Confidence, maxConfidence)
	assert.GreaterOrEqual(t, out.Confidence, minConfidence)
}

func TestGenerate_NoSourcesYieldsMinimumConfidenceFloor(t *testing.T) {
	plan := query.Analyze("¿Qué pacientes tienen diabetes?")
	out, err := Generate(context.Background(), plan, nil, &fakeLLM{response: "no hay datos"})
	require.NoError(t, err)
	assert.Equal(t, minConfidence, out.Confidence)
}

func TestGenerate_LLMErrorPropagates(t *testing.T) {
	plan := query.Analyze("hola")
	_, err := Generate(context.Background(), plan, nil, &fakeLLM{err: assertErr{}})
	require.Error(t, err)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestFollowUpSuggestions_CappedAtThree(t *testing.T) {
	plan := query.Analyze("¿Qué medicamento toma Juan, Ana, Luis y María?")
	follow := followUpSuggestions(plan)
	assert.LessOrEqual(t, len(follow), maxFollowUps)
}

func TestAssembleContext_CapsAtMaxChars(t *testing.T) {
	long := strings.Repeat("a", maxContextChars)
	results := []retrieve.Result{{Excerpt: long, Metadata: map[string]string{}}}
	ctxBlock := assembleContext(results)
	assert.LessOrEqual(t, len(ctxBlock), maxContextChars)
}

func TestValidateAnswer_TrimsToMaxLength(t *testing.T) {
	long := strings.Repeat("b", maxAnswerChars+500)
	out := validateAnswer(long)
	assert.LessOrEqual(t, len(out)-len(disclaimer), maxAnswerChars)
}
