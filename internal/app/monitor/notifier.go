package monitor

import (
	"context"

	"go.uber.org/zap"

	"wallet_monitor/internal/app/port"
	"wallet_monitor/internal/domain/entity"
)

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier reports every alert as a structured log line.
func NewLogNotifier(logger *zap.Logger) port.Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNotifier{logger: logger.Named("Alerts")}
}

func (n *logNotifier) Notify(_ context.Context, alert entity.Alert) error {
	n.logger.Info(alert.String(),
		zap.String("id", alert.ID),
		zap.String("kind", string(alert.Kind)),
		zap.String("chain", alert.Chain),
		zap.String("symbol", alert.Symbol),
		zap.Float64("amount", alert.Amount),
		zap.Float64("quoteValue", alert.QuoteValue),
		zap.Bool("relatedToPortfolio", alert.RelatedToPortfolio))
	return nil
}
