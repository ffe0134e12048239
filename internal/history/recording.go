package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mulsemedia/sensory-core/internal/dispatch"
)

// recordTimeout bounds each audit-log write so a slow disk cannot stall
// the dispatch path.
const recordTimeout = 2 * time.Second

// Logger is the minimal logging surface the recording sink needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// RecordingSink decorates a dispatch.CommandSink with audit logging.
// Every Send is forwarded to the wrapped sink and then recorded, with
// the sink's outcome, in the history repository. Reconfigure passes
// through unrecorded.
//
// It implements dispatch.EffectSink so the originating effect type is
// captured when the dispatcher provides it.
type RecordingSink struct {
	next   dispatch.CommandSink
	repo   Repository
	logger Logger
}

// NewRecordingSink wraps next with audit logging into repo. logger may
// be nil to discard recording failures.
func NewRecordingSink(next dispatch.CommandSink, repo Repository, logger Logger) (*RecordingSink, error) {
	if next == nil {
		return nil, ErrNilSink
	}
	if repo == nil {
		return nil, ErrNilDB
	}
	return &RecordingSink{next: next, repo: repo, logger: logger}, nil
}

// Send forwards the command and records the outcome without an effect
// type.
func (s *RecordingSink) Send(deviceID, command string, params map[string]any) error {
	return s.SendEffect("", deviceID, command, params)
}

// SendEffect forwards the command and records the outcome together with
// the effect type that produced it.
func (s *RecordingSink) SendEffect(effectType, deviceID, command string, params map[string]any) error {
	sendErr := s.next.Send(deviceID, command, params)
	s.record(effectType, deviceID, command, params, sendErr)
	return sendErr
}

// Reconfigure passes through to the wrapped sink.
func (s *RecordingSink) Reconfigure(config map[string]any) error {
	return s.next.Reconfigure(config)
}

// record writes the audit row. Failures are logged, never returned; the
// dispatch outcome is decided by the wrapped sink alone.
func (s *RecordingSink) record(effectType, deviceID, command string, params map[string]any, sendErr error) {
	rec := Record{
		ID:           uuid.NewString(),
		EffectType:   effectType,
		DeviceID:     deviceID,
		Command:      command,
		Parameters:   params,
		Status:       StatusOK,
		DispatchedAt: time.Now().UTC(),
	}
	if sendErr != nil {
		rec.Status = StatusError
		msg := sendErr.Error()
		rec.ErrorMsg = &msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := s.repo.Insert(ctx, rec); err != nil && s.logger != nil {
		s.logger.Warn("recording dispatch history failed",
			"device_id", deviceID,
			"command", command,
			"error", err,
		)
	}
}
