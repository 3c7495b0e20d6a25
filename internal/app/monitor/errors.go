package monitor

import "errors"

var (
	// ErrInvalidThreshold is returned when a threshold value is not a finite number.
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrInvalidTarget is returned when a target has no chain or no address.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrUnknownKind is returned when no strategy is configured for a task kind.
	ErrUnknownKind = errors.New("no strategy configured for kind")
	// ErrClosed is returned by registrations made after Shutdown.
	ErrClosed = errors.New("monitor is shut down")
)
