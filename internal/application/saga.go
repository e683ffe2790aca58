package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const compensationTimeout = 30 * time.Second

// sagaStep pairs a forward action with the action that semantically reverses
// it. Steps with nothing to undo leave compensate nil.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// sagaFailure records which step broke the saga; compensation has already run
// by the time the caller sees it.
type sagaFailure struct {
	step  string
	cause error
}

func (f *sagaFailure) Error() string {
	return fmt.Sprintf("saga step %s failed: %v", f.step, f.cause)
}

func (f *sagaFailure) Unwrap() error { return f.cause }

// runSaga executes steps in order. On the first failure it compensates every
// completed step in reverse and reports the failing step. There is no retry:
// the first failure is fatal for the whole saga.
func (s *Service) runSaga(ctx context.Context, operation string, steps []sagaStep) *sagaFailure {
	for i, step := range steps {
		if err := step.run(ctx); err != nil {
			s.compensateSaga(ctx, operation, step.name, steps[:i])
			return &sagaFailure{step: step.name, cause: err}
		}
	}
	return nil
}

// compensateSaga undoes completed steps in reverse order. It runs on a fresh
// deadline detached from the caller's context so a request-cancellation that
// broke the saga cannot also starve its own cleanup. A compensation failure is
// an invariant violation (orphaned state) and is logged for operator
// remediation, never retried silently.
func (s *Service) compensateSaga(ctx context.Context, operation, failedStep string, completed []sagaStep) {
	if len(completed) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(cctx); err != nil {
			slog.Default().ErrorContext(cctx, "saga compensation failed, orphaned state requires manual remediation",
				"service", serviceName,
				"module", "application",
				"layer", "application",
				"operation", operation,
				"outcome", "critical",
				"failed_step", failedStep,
				"compensation_step", step.name,
				"error", err,
			)
		}
	}
}
