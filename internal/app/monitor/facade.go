package monitor

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
	"wallet_monitor/internal/pkg/metrics"
)

// DefaultAlertRetention is the age after which PruneOldAlerts drops alerts
// when called with a non-positive age.
const DefaultAlertRetention = 24 * time.Hour

// Config tunes a Facade. Zero values fall back to the package defaults.
type Config struct {
	BalanceInterval  time.Duration
	TransferInterval time.Duration
	MaxWorkers       int64
	FetchTimeout     time.Duration
	ShutdownGrace    time.Duration
	// DefaultThreshold applies to symbols without an entry. nil means
	// DefaultThreshold; zero or negative values are honoured.
	DefaultThreshold *float64
	// Thresholds replaces DefaultThresholds as the registry seed when non-nil.
	Thresholds map[string]float64
	// IgnoreBaseline suppresses balance alerts on a target's first observation.
	IgnoreBaseline bool
}

type options struct {
	logger         *zap.Logger
	notifier       port.Notifier
	now            func() time.Time
	balanceSource  port.BalanceSource
	transferSource port.TransferSource
	strategies     []Strategy
}

// Option configures optional Facade collaborators.
type Option func(o *options)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithNotifier replaces the default log notifier.
func WithNotifier(notifier port.Notifier) Option {
	return func(o *options) { o.notifier = notifier }
}

// WithClock sets the time source used for observations and pruning.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithBalanceSource enables balance polling (kind "balance").
func WithBalanceSource(source port.BalanceSource) Option {
	return func(o *options) { o.balanceSource = source }
}

// WithTransferSource enables transfer scanning (kind "transfer").
func WithTransferSource(source port.TransferSource) Option {
	return func(o *options) { o.transferSource = source }
}

// WithStrategy adds a custom strategy. It wins over a built-in one of the same kind.
func WithStrategy(st Strategy) Option {
	return func(o *options) { o.strategies = append(o.strategies, st) }
}

// Facade is the single entry point of the monitoring engine. It owns the
// snapshot, threshold and alert stores and the scheduler.
type Facade struct {
	logger     *zap.Logger
	snapshots  *SnapshotStore
	thresholds *ThresholdRegistry
	alerts     *AlertStore
	scheduler  *Scheduler
}

// NewFacade builds an engine pricing observations through quotes. Polling
// kinds are enabled by WithBalanceSource, WithTransferSource and WithStrategy.
func NewFacade(cfg Config, quotes port.QuoteSource, opts ...Option) *Facade {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.notifier == nil {
		o.notifier = NewLogNotifier(o.logger)
	}
	if cfg.BalanceInterval <= 0 {
		cfg.BalanceInterval = DefaultBalanceInterval
	}
	if cfg.TransferInterval <= 0 {
		cfg.TransferInterval = DefaultTransferInterval
	}
	defaultThreshold := DefaultThreshold
	if cfg.DefaultThreshold != nil {
		defaultThreshold = *cfg.DefaultThreshold
	}

	f := &Facade{
		logger:     o.logger.Named("Monitor"),
		snapshots:  NewSnapshotStore(),
		thresholds: NewThresholdRegistry(defaultThreshold, cfg.Thresholds),
		alerts:     NewAlertStore(o.now),
	}

	var strategies []Strategy
	if o.balanceSource != nil {
		strategies = append(strategies, Strategy{
			Kind:      entity.KindBalance,
			Interval:  cfg.BalanceInterval,
			Fetcher:   NewBalanceFetcher(o.balanceSource, quotes, o.now),
			Evaluator: NewBalanceEvaluator(f.thresholds, cfg.IgnoreBaseline, f.logger),
		})
	}
	if o.transferSource != nil {
		strategies = append(strategies, Strategy{
			Kind:      entity.KindTransfer,
			Interval:  cfg.TransferInterval,
			Fetcher:   NewTransferFetcher(o.transferSource, quotes, o.now),
			Evaluator: NewTransferEvaluator(f.thresholds),
		})
	}
	strategies = append(strategies, o.strategies...)

	f.scheduler = NewScheduler(SchedulerConfig{
		MaxWorkers:    cfg.MaxWorkers,
		FetchTimeout:  cfg.FetchTimeout,
		ShutdownGrace: cfg.ShutdownGrace,
	}, strategies, f.snapshots, f.alerts, o.notifier, o.logger)
	return f
}

// Thresholds exposes the registry so custom evaluators can share it.
func (f *Facade) Thresholds() *ThresholdRegistry {
	return f.thresholds
}

// RegisterTarget starts balance polling of (chain, address). portfolioID may be
// empty. started is false when the target is already polled.
func (f *Facade) RegisterTarget(chain, address, portfolioID string) (started bool, err error) {
	return f.Register(entity.KindBalance, entity.Target{Chain: chain, Address: address, PortfolioID: portfolioID})
}

// RegisterTransferScan starts scanning (chain, address) for large transfers.
func (f *Facade) RegisterTransferScan(chain, address, portfolioID string) (started bool, err error) {
	return f.Register(entity.KindTransfer, entity.Target{Chain: chain, Address: address, PortfolioID: portfolioID})
}

// Register starts a task of kind for target.
func (f *Facade) Register(kind entity.TaskKind, target entity.Target) (bool, error) {
	target.Chain = strings.TrimSpace(target.Chain)
	target.Address = strings.TrimSpace(target.Address)
	return f.scheduler.Register(kind, target)
}

// RegisterPortfolio starts balance polling of every holding that carries an
// address, tagging alerts with portfolioID. It returns the number of newly
// started tasks.
func (f *Facade) RegisterPortfolio(portfolioID string, holdings []entity.Holding) int {
	started := 0
	for _, h := range holdings {
		if strings.TrimSpace(h.Address) == "" {
			continue
		}
		ok, err := f.RegisterTarget(h.Chain, h.Address, portfolioID)
		if err != nil {
			f.logger.Warn("Skipping portfolio holding", zap.String("portfolioID", portfolioID), zap.String("symbol", h.Symbol), zap.Error(err))
			continue
		}
		if ok {
			started++
		}
	}
	return started
}

// UnregisterTarget stops the task of kind for (chain, address).
func (f *Facade) UnregisterTarget(kind entity.TaskKind, chain, address string) bool {
	key := entity.Target{Chain: chain, Address: address}.Key()
	return f.scheduler.Unregister(entity.TaskKey{Kind: kind, TargetKey: key})
}

// Targets lists the active registrations.
func (f *Facade) Targets() []entity.Registration {
	return f.scheduler.Registrations()
}

// SetThreshold configures the alert cutoff of symbol. See ThresholdRegistry.Set.
func (f *Facade) SetThreshold(symbol string, value float64) error {
	if err := f.thresholds.Set(symbol, value); err != nil {
		return err
	}
	f.logger.Info("Threshold updated", zap.String("symbol", NormalizeSymbol(symbol)), zap.Float64("value", value))
	return nil
}

// GetThreshold returns the alert cutoff of symbol.
func (f *Facade) GetThreshold(symbol string) float64 {
	return f.thresholds.Get(symbol)
}

// ListAlerts returns a snapshot of every stored alert.
func (f *Facade) ListAlerts() []entity.Alert {
	return f.alerts.List()
}

// AlertsForSymbol returns the stored alerts of symbol.
func (f *Facade) AlertsForSymbol(symbol string) []entity.Alert {
	return f.alerts.ForSymbol(symbol)
}

// AlertsForChain returns the stored alerts raised on chain.
func (f *Facade) AlertsForChain(chain string) []entity.Alert {
	return f.alerts.ForChain(chain)
}

// PruneOldAlerts drops alerts older than age (DefaultAlertRetention when age <= 0).
func (f *Facade) PruneOldAlerts(age time.Duration) int {
	if age <= 0 {
		age = DefaultAlertRetention
	}
	removed := f.alerts.PruneOlderThan(age)
	metrics.AlertsPruned.Add(float64(removed))
	if removed > 0 {
		f.logger.Info("Pruned old alerts", zap.Int("removed", removed), zap.Duration("age", age))
	}
	return removed
}

// Snapshot returns the latest snapshot of the kind task for (chain, address).
func (f *Facade) Snapshot(kind entity.TaskKind, chain, address string) (*entity.Snapshot, bool) {
	key := entity.Target{Chain: chain, Address: address}.Key()
	return f.snapshots.Get(entity.TaskKey{Kind: kind, TargetKey: key})
}

// TokenBalance returns the last observed balance of symbol, 0 when unknown.
func (f *Facade) TokenBalance(chain, address, symbol string) float64 {
	snapshot, ok := f.Snapshot(entity.KindBalance, chain, address)
	if !ok {
		return 0
	}
	return snapshot.Balance(NormalizeSymbol(symbol))
}

// TotalMonitoredValue sums the quote value of the latest balance snapshots.
func (f *Facade) TotalMonitoredValue() float64 {
	var total float64
	f.snapshots.Range(func(key entity.TaskKey, snapshot *entity.Snapshot) bool {
		if key.Kind == entity.KindBalance {
			total += snapshot.TotalQuoteValue
		}
		return true
	})
	return total
}

// SnapshotWrites returns how many snapshots have been stored so far.
func (f *Facade) SnapshotWrites() uint64 {
	return f.snapshots.Writes()
}

// Shutdown stops every task and waits for in-flight ticks within the grace
// period. It is idempotent.
func (f *Facade) Shutdown() error {
	return f.scheduler.Shutdown()
}
