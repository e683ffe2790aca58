package application

import (
	"context"
	"errors"
	"testing"
)

func TestRunSagaExecutesStepsInOrder(t *testing.T) {
	t.Parallel()

	s := NewService(Dependencies{})
	var order []string
	steps := []sagaStep{
		{name: "first", run: func(context.Context) error { order = append(order, "first"); return nil }},
		{name: "second", run: func(context.Context) error { order = append(order, "second"); return nil }},
		{name: "third", run: func(context.Context) error { order = append(order, "third"); return nil }},
	}

	if failure := s.runSaga(context.Background(), "test", steps); failure != nil {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if len(order) != 3 || order[0] != "first" || order[2] != "third" {
		t.Fatalf("steps ran out of order: %v", order)
	}
}

func TestRunSagaCompensatesCompletedStepsInReverse(t *testing.T) {
	t.Parallel()

	s := NewService(Dependencies{})
	var undone []string
	boom := errors.New("boom")
	steps := []sagaStep{
		{
			name:       "first",
			run:        func(context.Context) error { return nil },
			compensate: func(context.Context) error { undone = append(undone, "first"); return nil },
		},
		{
			name:       "second",
			run:        func(context.Context) error { return nil },
			compensate: func(context.Context) error { undone = append(undone, "second"); return nil },
		},
		{
			name: "third",
			run:  func(context.Context) error { return boom },
		},
	}

	failure := s.runSaga(context.Background(), "test", steps)
	if failure == nil {
		t.Fatalf("expected saga failure")
	}
	if failure.step != "third" || !errors.Is(failure, boom) {
		t.Fatalf("unexpected failure report: %+v", failure)
	}
	if len(undone) != 2 || undone[0] != "second" || undone[1] != "first" {
		t.Fatalf("compensation must run in reverse order, got %v", undone)
	}
}

func TestRunSagaFirstStepFailureCompensatesNothing(t *testing.T) {
	t.Parallel()

	s := NewService(Dependencies{})
	compensated := false
	steps := []sagaStep{
		{
			name:       "first",
			run:        func(context.Context) error { return errors.New("no commit") },
			compensate: func(context.Context) error { compensated = true; return nil },
		},
	}

	if failure := s.runSaga(context.Background(), "test", steps); failure == nil {
		t.Fatalf("expected saga failure")
	}
	if compensated {
		t.Fatalf("a step that never completed must not be compensated")
	}
}

func TestRunSagaSkipsNilCompensation(t *testing.T) {
	t.Parallel()

	s := NewService(Dependencies{})
	var undone []string
	steps := []sagaStep{
		{
			name:       "first",
			run:        func(context.Context) error { return nil },
			compensate: func(context.Context) error { undone = append(undone, "first"); return nil },
		},
		{
			name: "second",
			run:  func(context.Context) error { return nil },
		},
		{
			name: "third",
			run:  func(context.Context) error { return errors.New("boom") },
		},
	}

	if failure := s.runSaga(context.Background(), "test", steps); failure == nil {
		t.Fatalf("expected saga failure")
	}
	if len(undone) != 1 || undone[0] != "first" {
		t.Fatalf("only steps with compensation should be undone, got %v", undone)
	}
}

func TestRunSagaSurvivesCancelledCaller(t *testing.T) {
	t.Parallel()

	s := NewService(Dependencies{})
	ctx, cancel := context.WithCancel(context.Background())
	compensated := false
	steps := []sagaStep{
		{
			name: "first",
			run:  func(context.Context) error { return nil },
			compensate: func(cctx context.Context) error {
				if cctx.Err() != nil {
					t.Errorf("compensation context must outlive the caller's cancellation")
				}
				compensated = true
				return nil
			},
		},
		{
			name: "second",
			run: func(context.Context) error {
				cancel()
				return ctx.Err()
			},
		},
	}

	if failure := s.runSaga(ctx, "test", steps); failure == nil {
		t.Fatalf("expected saga failure")
	}
	if !compensated {
		t.Fatalf("compensation must run even after the caller cancelled")
	}
}
