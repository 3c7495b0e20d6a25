package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wallet_monitor/internal/domain/entity"
)

// Fetcher observes a target once and builds a fresh snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, target entity.Target) (*entity.Snapshot, error)
}

// Evaluator turns the previous and current snapshot of a target into alerts.
// previous is nil on the first observation. Evaluators must not block.
type Evaluator interface {
	Evaluate(previous, current *entity.Snapshot) []entity.Alert
}

// Strategy parameterizes the scheduler for one kind of task.
type Strategy struct {
	Kind      entity.TaskKind
	Interval  time.Duration
	Fetcher   Fetcher
	Evaluator Evaluator
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, target entity.Target) (*entity.Snapshot, error)

func (f FetcherFunc) Fetch(ctx context.Context, target entity.Target) (*entity.Snapshot, error) {
	return f(ctx, target)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(previous, current *entity.Snapshot) []entity.Alert

func (f EvaluatorFunc) Evaluate(previous, current *entity.Snapshot) []entity.Alert {
	return f(previous, current)
}

func newAlertID() string {
	return uuid.NewString()
}
