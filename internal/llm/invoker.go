package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// InvocationError is returned whenever the model call fails or times out.
// The original cause is kept for errors.Is / errors.As.
type InvocationError struct {
	Stage string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model invocation failed during %s stage: %v", e.Stage, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call hit its deadline.
func (e *InvocationError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

type result struct {
	reply Reply
	err   error
}

// Invoker sends one prompt per call and returns normalized text. No state
// is carried between calls.
type Invoker struct {
	model   Model
	timeout time.Duration
}

// NewInvoker returns an Invoker; timeout <= 0 means only the caller's
// context bounds the call.
func NewInvoker(model Model, timeout time.Duration) *Invoker {
	return &Invoker{model: model, timeout: timeout}
}

// Invoke runs the model under the per-call timeout. The deadline is enforced
// here even if the Model ignores its context.
func (i *Invoker) Invoke(ctx context.Context, stage, prompt string) (string, error) {
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if i.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	logger := zerolog.Ctx(ctx)
	start := time.Now()

	done := make(chan result, 1)
	go func() {
		reply, err := i.model.Generate(callCtx, prompt)
		done <- result{reply: reply, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = result{err: callCtx.Err()}
	}

	if res.err != nil {
		logger.Error().Err(res.err).Str("stage", stage).Dur("elapsed", time.Since(start)).Msg("Model invocation failed")
		return "", &InvocationError{Stage: stage, Err: res.err}
	}

	text := Normalize(res.reply)
	logger.Debug().Str("stage", stage).Dur("elapsed", time.Since(start)).Str("raw_text", text).Msg("Model invocation finished")
	return text, nil
}
