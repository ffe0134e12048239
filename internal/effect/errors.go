package effect

import "errors"

// Domain errors for the effect package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, effect.ErrInvalidEffect) {
//	    // handle validation failure
//	}
var (
	// ErrInvalidEffect is returned when effect validation fails.
	ErrInvalidEffect = errors.New("effect: invalid")

	// ErrEmptyType is returned when an effect has no effect type.
	ErrEmptyType = errors.New("effect: effect type required")

	// ErrInvalidTimestamp is returned when a timestamp is negative.
	ErrInvalidTimestamp = errors.New("effect: timestamp must be >= 0")

	// ErrInvalidDuration is returned when a duration is negative.
	ErrInvalidDuration = errors.New("effect: duration must be >= 0")

	// ErrInvalidIntensity is returned when intensity is outside 0-100.
	ErrInvalidIntensity = errors.New("effect: intensity must be between 0 and 100")

	// ErrEmptyTimeline is returned when building a timeline with no effects.
	ErrEmptyTimeline = errors.New("effect: timeline has no effects")
)
