// Package pipeline runs the staged model conversations that turn a log
// question into an Elasticsearch query, and repair a query that failed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"log-query-translator/internal/prompt"
)

type State int

const (
	StateStart State = iota
	StateAnalyzed
	StateTranslated
	StateOptimized
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateAnalyzed:
		return "ANALYZED"
	case StateTranslated:
		return "TRANSLATED"
	case StateOptimized:
		return "OPTIMIZED"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FailurePolicy decides what a pipeline does when no query can be
// extracted from any of its stages.
type FailurePolicy int

const (
	// FailRequest surfaces the failure to the caller.
	FailRequest FailurePolicy = iota
	// ReturnSafeDefault answers with SafeDefaultQuery instead.
	ReturnSafeDefault
)

func (p FailurePolicy) String() string {
	if p == ReturnSafeDefault {
		return "return-safe-default"
	}
	return "fail-request"
}

// Invoker is the model capability as the pipelines see it.
type Invoker interface {
	Invoke(ctx context.Context, stage, prompt string) (string, error)
}

// Observer receives stage timings and fallbacks; metrics hang off it.
type Observer interface {
	StageFinished(stage prompt.Stage, elapsed time.Duration, err error)
	ExtractionFallback(pipeline string)
}

type nopObserver struct{}

func (nopObserver) StageFinished(prompt.Stage, time.Duration, error) {}
func (nopObserver) ExtractionFallback(string)                         {}

// Error is the FAILED state surfaced to callers.
type Error struct {
	Stage prompt.Stage
	Cause string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Cause, e.Err)
	}
	return e.Cause
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the DONE state.
type Result struct {
	Query map[string]any
	// Source is the stage whose text supplied Query; empty for the safe default.
	Source      prompt.Stage
	Explanation string
	// Fallback is true when an earlier stage or the safe default had to stand in.
	Fallback bool
	States   []State
}

// SafeDefaultQuery is the unfiltered, capped query returned when a repair
// produced nothing usable. A fresh map is returned on each call.
func SafeDefaultQuery() map[string]any {
	return map[string]any{
		"query":   map[string]any{"match_all": map[string]any{}},
		"size":    1,
		"_source": true,
	}
}

type Option func(*options)

type options struct {
	policy   *FailurePolicy
	observer Observer
}

// WithFailurePolicy overrides the pipeline's default policy.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) { o.policy = &p }
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func buildOptions(defaultPolicy FailurePolicy, opts []Option) (FailurePolicy, Observer) {
	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy == nil {
		return defaultPolicy, o.observer
	}
	return *o.policy, o.observer
}

// runStage renders and invokes one stage, reporting timing to obs.
func runStage(ctx context.Context, inv Invoker, prompts *prompt.Registry, obs Observer, stage prompt.Stage, vars prompt.Vars) (string, error) {
	start := time.Now()
	rendered, err := prompts.Render(stage, vars)
	if err != nil {
		obs.StageFinished(stage, time.Since(start), err)
		return "", err
	}
	text, err := inv.Invoke(ctx, string(stage), rendered)
	obs.StageFinished(stage, time.Since(start), err)
	return text, err
}
