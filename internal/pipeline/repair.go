package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"log-query-translator/internal/extractor"
	"log-query-translator/internal/prompt"
)

const (
	causeFixFailed = "fix stage failed"

	defaultFixExplanation     = "Query corrected for the reported error."
	safeDefaultFixExplanation = "The corrected query could not be read; returning a safe default query."
)

type RepairInput struct {
	DSLQuery      string
	ErrorMessage  string
	FieldsContext string
}

// Repairer runs the single Fix stage. Its default policy is
// ReturnSafeDefault: an unattended caller always gets a query back.
type Repairer struct {
	invoker  Invoker
	prompts  *prompt.Registry
	policy   FailurePolicy
	observer Observer
}

func NewRepairer(invoker Invoker, prompts *prompt.Registry, opts ...Option) *Repairer {
	policy, obs := buildOptions(ReturnSafeDefault, opts)
	return &Repairer{invoker: invoker, prompts: prompts, policy: policy, observer: obs}
}

func (r *Repairer) Policy() FailurePolicy { return r.policy }

func (r *Repairer) Repair(ctx context.Context, in RepairInput) (*Result, error) {
	states := []State{StateStart}

	fixed, err := runStage(ctx, r.invoker, r.prompts, r.observer, prompt.StageFix, prompt.Vars{
		prompt.SlotESQuery:              in.DSLQuery,
		prompt.SlotIndicesFieldsContext: in.FieldsContext,
		prompt.SlotErrorMessage:         in.ErrorMessage,
	})
	if err != nil {
		return nil, &Error{Stage: prompt.StageFix, Cause: causeFixFailed, Err: err}
	}

	if query, ok := extractor.Extract(fixed); ok {
		return &Result{
			Query:       query,
			Source:      prompt.StageFix,
			Explanation: defaultFixExplanation,
			States:      append(states, StateDone),
		}, nil
	}

	r.observer.ExtractionFallback("fix")
	if r.policy == FailRequest {
		return nil, &Error{Stage: prompt.StageFix, Cause: causeFixFailed, Err: ErrNoQuery}
	}

	zerolog.Ctx(ctx).Warn().Msg("No query in fix output, returning safe default query")
	return &Result{
		Query:       SafeDefaultQuery(),
		Explanation: safeDefaultFixExplanation,
		Fallback:    true,
		States:      append(states, StateDone),
	}, nil
}
