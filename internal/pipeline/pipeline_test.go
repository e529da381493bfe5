package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"log-query-translator/internal/fieldctx"
	"log-query-translator/internal/llm"
	"log-query-translator/internal/prompt"
)

// scriptedInvoker answers each stage with a fixed reply and records prompts.
type scriptedInvoker struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts map[string]string
	calls   []string
}

func newScripted(replies map[string]string) *scriptedInvoker {
	return &scriptedInvoker{replies: replies, errs: map[string]error{}, prompts: map[string]string{}}
}

func (s *scriptedInvoker) Invoke(_ context.Context, stage, p string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stage)
	s.prompts[stage] = p
	if err := s.errs[stage]; err != nil {
		return "", err
	}
	return s.replies[stage], nil
}

type recordingObserver struct {
	stages    []prompt.Stage
	fallbacks []string
}

func (r *recordingObserver) StageFinished(stage prompt.Stage, _ time.Duration, _ error) {
	r.stages = append(r.stages, stage)
}

func (r *recordingObserver) ExtractionFallback(p string) { r.fallbacks = append(r.fallbacks, p) }

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func input() TranslationInput {
	return TranslationInput{
		Query:         "Show me error logs from the last hour",
		IndexPattern:  "logs-*",
		FieldsContext: "- level: keyword\n- @timestamp: date",
	}
}

func TestTranslate_UsesOptimizedQuery(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":     "Errors in the last hour.",
		"translation":  `{"query":{"match_all":{}}}`,
		"optimization": "```json\n{\"query\":{\"term\":{\"level\":\"ERROR\"}}}\n```\nExplanation: Uses a term filter on level.",
	})
	obs := &recordingObserver{}

	res, err := NewTranslator(inv, prompt.NewRegistry(), WithObserver(obs)).Translate(context.Background(), input())
	require.NoError(t, err)

	assert.JSONEq(t, `{"query":{"term":{"level":"ERROR"}}}`, marshal(t, res.Query))
	assert.Equal(t, prompt.StageOptimization, res.Source)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Uses a term filter on level.", res.Explanation)
	assert.Equal(t, []State{StateStart, StateAnalyzed, StateTranslated, StateOptimized, StateDone}, res.States)
	assert.Equal(t, []string{"analysis", "translation", "optimization"}, inv.calls)
	assert.Len(t, obs.stages, 3)
	assert.Empty(t, obs.fallbacks)
}

func TestTranslate_FallsBackToTranslatedQuery(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":     "Errors.",
		"translation":  `{"query":{"term":{"level":"ERROR"}},"size":50}`,
		"optimization": "I could not improve this query.",
	})
	obs := &recordingObserver{}

	res, err := NewTranslator(inv, prompt.NewRegistry(), WithObserver(obs)).Translate(context.Background(), input())
	require.NoError(t, err)

	assert.JSONEq(t, `{"query":{"term":{"level":"ERROR"}},"size":50}`, marshal(t, res.Query))
	assert.Equal(t, prompt.StageTranslation, res.Source)
	assert.True(t, res.Fallback)
	assert.Equal(t, []State{StateStart, StateAnalyzed, StateTranslated, StateDone}, res.States)
	assert.Equal(t, []string{"translate"}, obs.fallbacks)
}

func TestTranslate_OptimizationModelFailureDegrades(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":    "Errors.",
		"translation": `{"query":{"match":{"message":"timeout"}}}`,
	})
	inv.errs["optimization"] = errors.New("model overloaded")

	res, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), input())
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match":{"message":"timeout"}}}`, marshal(t, res.Query))
	assert.True(t, res.Fallback)
}

func TestTranslate_NoQueryInEitherStage(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":     "Errors.",
		"translation":  "Sorry, I cannot help with that.",
		"optimization": "Nothing to optimize.",
	})

	res, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), input())
	require.Error(t, err)
	assert.Nil(t, res)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "could not extract a query from either stage", pErr.Cause)
	assert.ErrorIs(t, err, ErrNoQuery)
}

func TestTranslate_SafeDefaultPolicy(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":     "Errors.",
		"translation":  "no json",
		"optimization": "still no json",
	})

	res, err := NewTranslator(inv, prompt.NewRegistry(), WithFailurePolicy(ReturnSafeDefault)).
		Translate(context.Background(), input())
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"match_all":{}},"size":1,"_source":true}`, marshal(t, res.Query))
	assert.True(t, res.Fallback)
}

func TestTranslate_EarlyStageFailures(t *testing.T) {
	tests := []struct {
		name      string
		failStage string
		cause     string
		calls     []string
	}{
		{"analysis", "analysis", "analysis stage failed", []string{"analysis"}},
		{"translation", "translation", "translation stage failed", []string{"analysis", "translation"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newScripted(map[string]string{"analysis": "Errors.", "translation": `{"query":{}}`})
			modelErr := &llm.InvocationError{Stage: tt.failStage, Err: context.DeadlineExceeded}
			inv.errs[tt.failStage] = modelErr

			_, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), input())
			require.Error(t, err)

			var pErr *Error
			require.ErrorAs(t, err, &pErr)
			assert.Equal(t, tt.cause, pErr.Cause)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Equal(t, tt.calls, inv.calls)
		})
	}
}

func TestTranslate_BlankAnalysisFailsTranslationRender(t *testing.T) {
	inv := newScripted(map[string]string{"analysis": "   "})

	_, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), input())
	require.Error(t, err)

	var missing *prompt.MissingSlotError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Slots, prompt.SlotAnalysis)
	assert.Equal(t, []string{"analysis"}, inv.calls)
}

func TestTranslate_PromptsCarryEarlierOutputs(t *testing.T) {
	inv := newScripted(map[string]string{
		"analysis":     "ANALYSIS-MARKER",
		"translation":  `{"query":{"term":{"service":"auth"}}}`,
		"optimization": `{"query":{"term":{"service":"auth"}}}`,
	})

	in := input()
	_, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), in)
	require.NoError(t, err)

	assert.Contains(t, inv.prompts["analysis"], in.Query)
	assert.Contains(t, inv.prompts["analysis"], in.FieldsContext)
	assert.Contains(t, inv.prompts["translation"], "ANALYSIS-MARKER")
	assert.Contains(t, inv.prompts["translation"], in.IndexPattern)
	assert.Contains(t, inv.prompts["optimization"], `{"query":{"term":{"service":"auth"}}}`)
}

// Full run through the real invoker with a model that answers by stage.
func TestTranslate_PaymentServiceScenario(t *testing.T) {
	fields := fieldctx.Summarize(json.RawMessage(`{"level":"keyword","service":"keyword","@timestamp":"date","message":"text"}`))
	model := llm.ModelFunc(func(_ context.Context, p string) (llm.Reply, error) {
		switch {
		case strings.Contains(p, "Analyze the following"):
			return llm.TextReply("1. Last hour\n2. ERROR\n3. payment-service"), nil
		case strings.Contains(p, "Translate the question"):
			return llm.TextReply(`{'query': {'bool': {'filter': [{'term': {'level': 'ERROR'}}]}}}`), nil
		default:
			return llm.TextReply("```json\n" + `{"query":{"bool":{"filter":[{"term":{"level":"ERROR"}},{"term":{"service":"payment-service"}},{"range":{"@timestamp":{"gte":"now-1h"}}}]}},"size":100}` + "\n```\nExplanation: Filters errors from payment-service in the last hour."), nil
		}
	})
	inv := llm.NewInvoker(model, time.Second)

	res, err := NewTranslator(inv, prompt.NewRegistry()).Translate(context.Background(), TranslationInput{
		Query:         "Show me all errors from the payment-service in the last hour",
		IndexPattern:  "logs-*",
		FieldsContext: fields,
	})
	require.NoError(t, err)

	filters := res.Query["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	assert.Len(t, filters, 3)
	assert.Equal(t, "Filters errors from payment-service in the last hour.", res.Explanation)
	assert.False(t, res.Fallback)
}

func TestRepair_ReturnsFixedQuery(t *testing.T) {
	inv := newScripted(map[string]string{
		"fix": "```json\n{\"query\":{\"term\":{\"level.keyword\":\"ERROR\"}}}\n```",
	})

	res, err := NewRepairer(inv, prompt.NewRegistry()).Repair(context.Background(), RepairInput{
		DSLQuery:      `{"query":{"term":{"level":"ERROR"}}}`,
		ErrorMessage:  "field [level] is text",
		FieldsContext: fieldctx.NoFieldsSentinel,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":{"term":{"level.keyword":"ERROR"}}}`, marshal(t, res.Query))
	assert.Equal(t, prompt.StageFix, res.Source)
	assert.False(t, res.Fallback)
	assert.Contains(t, inv.prompts["fix"], "field [level] is text")
	assert.Contains(t, inv.prompts["fix"], fieldctx.NoFieldsSentinel)
}

func TestRepair_SafeDefaultWhenNothingExtracted(t *testing.T) {
	inv := newScripted(map[string]string{"fix": "I am not sure what went wrong."})
	obs := &recordingObserver{}

	res, err := NewRepairer(inv, prompt.NewRegistry(), WithObserver(obs)).Repair(context.Background(), RepairInput{
		DSLQuery:      `{"query":{}}`,
		ErrorMessage:  "parse error",
		FieldsContext: fieldctx.NoFieldsSentinel,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"_source":true,"query":{"match_all":{}},"size":1}`, marshal(t, res.Query))
	assert.True(t, res.Fallback)
	assert.Equal(t, []string{"fix"}, obs.fallbacks)
}

func TestRepair_FailRequestPolicy(t *testing.T) {
	inv := newScripted(map[string]string{"fix": "no json here"})

	_, err := NewRepairer(inv, prompt.NewRegistry(), WithFailurePolicy(FailRequest)).Repair(context.Background(), RepairInput{
		DSLQuery:      `{"query":{}}`,
		ErrorMessage:  "parse error",
		FieldsContext: fieldctx.NoFieldsSentinel,
	})
	assert.ErrorIs(t, err, ErrNoQuery)
}

func TestRepair_ModelFailureIsSurfaced(t *testing.T) {
	inv := newScripted(nil)
	inv.errs["fix"] = errors.New("boom")

	_, err := NewRepairer(inv, prompt.NewRegistry()).Repair(context.Background(), RepairInput{
		DSLQuery:      `{"query":{}}`,
		ErrorMessage:  "parse error",
		FieldsContext: fieldctx.NoFieldsSentinel,
	})
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, prompt.StageFix, pErr.Stage)
}

func TestSafeDefaultQuery_IsFreshEachCall(t *testing.T) {
	q := SafeDefaultQuery()
	q["size"] = 500
	assert.Equal(t, 1, SafeDefaultQuery()["size"])
}

func TestDefaultPolicies(t *testing.T) {
	assert.Equal(t, FailRequest, NewTranslator(nil, prompt.NewRegistry()).Policy())
	assert.Equal(t, ReturnSafeDefault, NewRepairer(nil, prompt.NewRegistry()).Policy())
}
