package timeline

import "errors"

// Domain errors for the timeline package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, timeline.ErrInvalidState) {
//	    // operation not valid in the player's current state
//	}
var (
	// ErrInvalidState is returned when an operation is invalid for the
	// player's current state (e.g. Start with nothing loaded, Resume
	// while not paused, AddEventEffect without an event id).
	ErrInvalidState = errors.New("timeline: invalid state for operation")

	// ErrNoTimeline is returned when Start or Seek is called before Load.
	ErrNoTimeline = errors.New("timeline: no timeline loaded")
)
