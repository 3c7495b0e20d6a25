package port

import (
	"context"

	"wallet_monitor/internal/domain/entity"
)

// Notifier is told about every alert after it has been stored.
type Notifier interface {
	Notify(ctx context.Context, alert entity.Alert) error
}
