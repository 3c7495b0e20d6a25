package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
	"wallet_monitor/internal/pkg/metrics"
)

const (
	DefaultMaxWorkers    = 2
	DefaultFetchTimeout  = 30 * time.Second
	DefaultShutdownGrace = 10 * time.Second
)

// SchedulerConfig bounds the scheduler's resources.
type SchedulerConfig struct {
	MaxWorkers    int64         // ticks executing at the same time across all tasks
	FetchTimeout  time.Duration // upper bound of a single tick's fetch
	ShutdownGrace time.Duration // how long Shutdown waits for in-flight ticks
}

type task struct {
	key    entity.TaskKey
	target entity.Target
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns one periodic task per registered (kind, chain, address).
// Each task ticks sequentially: fetch, swap snapshot, evaluate, append alerts,
// sleep. At most MaxWorkers ticks run at once.
type Scheduler struct {
	logger     *zap.Logger
	strategies map[entity.TaskKind]Strategy
	snapshots  *SnapshotStore
	alerts     *AlertStore
	notifier   port.Notifier
	slots      *semaphore.Weighted
	cfg        SchedulerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	tasks    map[entity.TaskKey]*task
	retiring map[entity.TaskKey]chan struct{}
	closed   bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewScheduler creates a scheduler writing into snapshots and alerts.
func NewScheduler(
	cfg SchedulerConfig,
	strategies []Strategy,
	snapshots *SnapshotStore,
	alerts *AlertStore,
	notifier port.Notifier,
	logger *zap.Logger,
) *Scheduler {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byKind := make(map[entity.TaskKind]Strategy, len(strategies))
	for _, st := range strategies {
		byKind[st.Kind] = st
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:     logger.Named("Scheduler"),
		strategies: byKind,
		snapshots:  snapshots,
		alerts:     alerts,
		notifier:   notifier,
		slots:      semaphore.NewWeighted(cfg.MaxWorkers),
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		tasks:      make(map[entity.TaskKey]*task),
		retiring:   make(map[entity.TaskKey]chan struct{}),
	}
}

// Register starts a periodic task for target under the strategy of kind.
// It returns false without starting anything when the task already runs.
func (s *Scheduler) Register(kind entity.TaskKind, target entity.Target) (bool, error) {
	key := entity.TaskKey{Kind: kind, TargetKey: target.Key()}
	if key.Chain == "" || key.Address == "" {
		return false, fmt.Errorf("%w: chain=%q address=%q", ErrInvalidTarget, target.Chain, target.Address)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	st, ok := s.strategies[kind]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if _, running := s.tasks[key]; running {
		s.logger.Debug("Target already registered", zap.Stringer("task", key))
		return false, nil
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{key: key, target: target, cancel: cancel, done: make(chan struct{})}
	s.tasks[key] = t

	// a previously cancelled task for the same key may still be finishing its tick
	prev := s.retiring[key]
	delete(s.retiring, key)

	s.wg.Add(1)
	go s.run(ctx, t, st, prev)

	metrics.ActiveTasks.WithLabelValues(string(kind)).Inc()
	s.logger.Info("Target registered",
		zap.String("kind", string(kind)),
		zap.String("chain", target.Chain),
		zap.String("address", target.Address),
		zap.Duration("interval", st.Interval))
	return true, nil
}

// Unregister cancels the task of key. An in-flight tick is allowed to finish;
// no further tick starts. Emitted alerts and the last snapshot are kept.
func (s *Scheduler) Unregister(key entity.TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	delete(s.tasks, key)
	s.retiring[key] = t.done
	t.cancel()

	metrics.ActiveTasks.WithLabelValues(string(key.Kind)).Dec()
	s.logger.Info("Target unregistered", zap.Stringer("task", key))
	return true
}

// Registrations returns the active tasks ordered by kind, chain and address.
func (s *Scheduler) Registrations() []entity.Registration {
	s.mu.Lock()
	out := make([]entity.Registration, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, entity.Registration{Kind: t.key.Kind, Target: t.target})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Target.Chain != b.Target.Chain {
			return a.Target.Chain < b.Target.Chain
		}
		return a.Target.Address < b.Target.Address
	})
	return out
}

// Shutdown cancels every task and waits for in-flight ticks until the grace
// period elapses. Subsequent calls return the first call's result.
func (s *Scheduler) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for key := range s.tasks {
			metrics.ActiveTasks.WithLabelValues(string(key.Kind)).Dec()
			delete(s.tasks, key)
		}
		s.mu.Unlock()
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(s.cfg.ShutdownGrace)
		defer timer.Stop()
		select {
		case <-done:
			s.logger.Info("Scheduler stopped")
		case <-timer.C:
			s.shutdownErr = fmt.Errorf("scheduler shutdown: ticks still running after %s", s.cfg.ShutdownGrace)
			s.logger.Warn("Scheduler grace period elapsed with ticks in flight", zap.Duration("grace", s.cfg.ShutdownGrace))
		}
	})
	return s.shutdownErr
}

// forgetRetired drops t from the retiring set once it has exited, unless a
// re-registration already claimed the entry.
func (s *Scheduler) forgetRetired(t *task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done, ok := s.retiring[t.key]; ok && done == t.done {
		delete(s.retiring, t.key)
	}
}

func (s *Scheduler) run(ctx context.Context, t *task, st Strategy, prev <-chan struct{}) {
	defer s.wg.Done()
	defer s.forgetRetired(t)
	defer close(t.done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.slots.Acquire(ctx, 1); err != nil {
			return
		}
		if ctx.Err() != nil {
			s.slots.Release(1)
			return
		}
		s.tick(ctx, t, st)
		s.slots.Release(1)

		timer.Reset(st.Interval)
	}
}

// tick runs one fetch-diff-evaluate cycle. The fetch context survives task
// cancellation so a cancelled task finishes its tick instead of aborting it.
func (s *Scheduler) tick(ctx context.Context, t *task, st Strategy) {
	kind := string(t.key.Kind)
	start := time.Now()
	defer func() {
		metrics.TickDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.FetchTimeout)
	defer cancel()

	current, err := st.Fetcher.Fetch(fetchCtx, t.target)
	if err == nil && current == nil {
		err = fmt.Errorf("fetcher returned no snapshot")
	}
	if err != nil {
		metrics.TicksTotal.WithLabelValues(kind, metrics.OutcomeFetchFailed).Inc()
		s.logger.Warn("Fetch failed, skipping tick", zap.Stringer("task", t.key), zap.Error(err))
		return
	}

	previous := s.snapshots.Swap(t.key, current)
	metrics.SnapshotWrites.WithLabelValues(kind).Inc()

	alerts := st.Evaluator.Evaluate(previous, current)
	for _, alert := range alerts {
		s.alerts.Append(alert)
		metrics.AlertsTotal.WithLabelValues(string(alert.Kind), alert.Chain).Inc()
		if s.notifier != nil {
			if err := s.notifier.Notify(context.WithoutCancel(ctx), alert); err != nil {
				s.logger.Error("Alert notification failed", zap.String("alertID", alert.ID), zap.Error(err))
			}
		}
	}

	metrics.TicksTotal.WithLabelValues(kind, metrics.OutcomeOK).Inc()
	s.logger.Debug("Tick completed",
		zap.Stringer("task", t.key),
		zap.Int("alerts", len(alerts)),
		zap.Float64("totalQuoteValue", current.TotalQuoteValue))
}
