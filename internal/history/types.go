package history

import (
	"context"
	"time"
)

// Dispatch outcome statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Record is one dispatched command in the audit log.
type Record struct {
	// ID uniquely identifies the record.
	ID string

	// EffectType is the abstract effect that produced the command.
	// Empty when the command did not originate from an effect route.
	EffectType string

	// DeviceID and Command name the resolved device operation.
	DeviceID string
	Command  string

	// Parameters holds the final parameter set sent to the device.
	Parameters map[string]any

	// Status is StatusOK or StatusError.
	Status string

	// ErrorMsg carries the sink error text when Status is StatusError.
	ErrorMsg *string

	// DispatchedAt is when the command was forwarded, in UTC.
	DispatchedAt time.Time
}

// Repository stores dispatch records.
type Repository interface {
	// Insert appends a record to the log.
	Insert(ctx context.Context, rec Record) error

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)

	// ListByDevice returns up to limit records for one device, newest
	// first.
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]Record, error)
}
