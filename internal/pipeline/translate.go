package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"log-query-translator/internal/extractor"
	"log-query-translator/internal/prompt"
)

const (
	causeAnalysisFailed    = "analysis stage failed"
	causeTranslationFailed = "translation stage failed"
	causeOptimizeRender    = "optimization stage failed"
	causeNoQuery           = "could not extract a query from either stage"

	defaultTranslateExplanation = "Query translated from the natural language question."
)

// ErrNoQuery marks the unrecoverable extraction failure of a pipeline.
var ErrNoQuery = errors.New("no JSON query found in model output")

type TranslationInput struct {
	Query         string
	IndexPattern  string
	FieldsContext string
}

// Translator runs Analysis -> Translation -> Optimization. Its default
// policy is FailRequest.
type Translator struct {
	invoker  Invoker
	prompts  *prompt.Registry
	policy   FailurePolicy
	observer Observer
}

func NewTranslator(invoker Invoker, prompts *prompt.Registry, opts ...Option) *Translator {
	policy, obs := buildOptions(FailRequest, opts)
	return &Translator{invoker: invoker, prompts: prompts, policy: policy, observer: obs}
}

func (t *Translator) Policy() FailurePolicy { return t.policy }

// Translate walks the state machine. An early stage failure is final; a
// failed optimization falls back to the translation stage's query.
func (t *Translator) Translate(ctx context.Context, in TranslationInput) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	states := []State{StateStart}

	analysis, err := runStage(ctx, t.invoker, t.prompts, t.observer, prompt.StageAnalysis, prompt.Vars{
		prompt.SlotQuery:                in.Query,
		prompt.SlotIndicesFieldsContext: in.FieldsContext,
	})
	if err != nil {
		return nil, &Error{Stage: prompt.StageAnalysis, Cause: causeAnalysisFailed, Err: err}
	}
	states = append(states, StateAnalyzed)
	logger.Debug().Int("analysis_len", len(analysis)).Msg("Analysis stage finished")

	translated, err := runStage(ctx, t.invoker, t.prompts, t.observer, prompt.StageTranslation, prompt.Vars{
		prompt.SlotAnalysis:             analysis,
		prompt.SlotQuery:                in.Query,
		prompt.SlotIndexPattern:         in.IndexPattern,
		prompt.SlotIndicesFieldsContext: in.FieldsContext,
	})
	if err != nil {
		return nil, &Error{Stage: prompt.StageTranslation, Cause: causeTranslationFailed, Err: err}
	}
	states = append(states, StateTranslated)

	optimized, err := runStage(ctx, t.invoker, t.prompts, t.observer, prompt.StageOptimization, prompt.Vars{
		prompt.SlotESQuery:              translated,
		prompt.SlotIndicesFieldsContext: in.FieldsContext,
	})
	if err != nil {
		var missing *prompt.MissingSlotError
		if errors.As(err, &missing) {
			return nil, &Error{Stage: prompt.StageOptimization, Cause: causeOptimizeRender, Err: err}
		}
		// Optimization is best effort: a model failure here degrades to the
		// translated query below.
		logger.Warn().Err(err).Msg("Optimization stage failed, falling back to translated query")
		optimized = ""
	}

	if query, ok := extractor.Extract(optimized); ok {
		states = append(states, StateOptimized, StateDone)
		explanation, found := extractor.Explanation(optimized)
		if !found {
			explanation = defaultTranslateExplanation
		}
		return &Result{
			Query:       query,
			Source:      prompt.StageOptimization,
			Explanation: explanation,
			States:      states,
		}, nil
	}

	t.observer.ExtractionFallback("translate")
	logger.Warn().Msg("No query in optimization output, trying translation output")

	if query, ok := extractor.Extract(translated); ok {
		states = append(states, StateDone)
		return &Result{
			Query:       query,
			Source:      prompt.StageTranslation,
			Explanation: defaultTranslateExplanation,
			Fallback:    true,
			States:      states,
		}, nil
	}

	if t.policy == ReturnSafeDefault {
		states = append(states, StateDone)
		return &Result{
			Query:       SafeDefaultQuery(),
			Explanation: "No query could be extracted; returning a safe default query.",
			Fallback:    true,
			States:      states,
		}, nil
	}
	return nil, &Error{Stage: prompt.StageOptimization, Cause: causeNoQuery, Err: ErrNoQuery}
}
