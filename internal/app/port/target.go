package port

import "wallet_monitor/internal/domain/entity"

// TargetProvider defines the interface for loading targets to watch at startup.
type TargetProvider interface {
	GetTargets() ([]entity.Target, error)
}
