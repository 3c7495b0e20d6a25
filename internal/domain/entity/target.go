package entity

import (
	"fmt"
	"strings"
)

// TaskKind identifies which polling strategy observes a target.
type TaskKind string

const (
	// KindBalance polls the target's token balances and diffs consecutive snapshots.
	KindBalance TaskKind = "balance"
	// KindTransfer scans the target for large transfers on every tick.
	KindTransfer TaskKind = "transfer"
)

// ParseTaskKind converts a user supplied kind into a TaskKind.
func ParseTaskKind(s string) (TaskKind, bool) {
	switch TaskKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBalance:
		return KindBalance, true
	case KindTransfer:
		return KindTransfer, true
	}
	return "", false
}

// Target is a (chain, address) pair under periodic observation.
type Target struct {
	Chain       string `json:"chain" yaml:"chain"`
	Address     string `json:"address" yaml:"address"`
	PortfolioID string `json:"portfolioId,omitempty" yaml:"portfolioId,omitempty"` // weak back-reference, only used to tag alerts
}

// TargetKey is the identity of a target. Chain matching is case-insensitive,
// addresses are kept verbatim.
type TargetKey struct {
	Chain   string
	Address string
}

// Key returns the identity of the target.
func (t Target) Key() TargetKey {
	return TargetKey{Chain: strings.ToLower(strings.TrimSpace(t.Chain)), Address: strings.TrimSpace(t.Address)}
}

// String formats the key as chain:address.
func (k TargetKey) String() string {
	return fmt.Sprintf("%s:%s", k.Chain, k.Address)
}

// TaskKey identifies one periodic task: a target observed by one strategy.
type TaskKey struct {
	Kind TaskKind
	TargetKey
}

// String formats the key as kind/chain:address.
func (k TaskKey) String() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.TargetKey)
}

// Registration describes an active periodic task.
type Registration struct {
	Kind   TaskKind `json:"kind"`
	Target Target   `json:"target"`
}
