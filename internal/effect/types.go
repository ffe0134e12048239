package effect

import "fmt"

// LocationEverywhere is the default target location for an effect.
const LocationEverywhere = "everywhere"

// Intensity bounds (percent).
const (
	minIntensity = 0
	maxIntensity = 100
)

// Effect represents a single timed sensory actuation instruction.
//
// Timestamp and Duration are millisecond offsets relative to the start of
// the timeline the effect belongs to. Intensity and EventID are optional;
// a nil pointer means "not set".
type Effect struct {
	// Type identifies the abstract effect (e.g. "light", "wind", "vibration").
	Type string `json:"effect_type"`

	// Timestamp is the offset from timeline start in milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Duration is how long the effect lasts in milliseconds.
	Duration int64 `json:"duration"`

	// Intensity is the strength in percent (0-100), when set.
	Intensity *int `json:"intensity,omitempty"`

	// Location targets a spatial zone. Defaults to "everywhere".
	Location string `json:"location"`

	// Parameters carries effect-specific values passed to the dispatcher.
	Parameters map[string]any `json:"parameters,omitempty"`

	// EventID marks an ad hoc triggered effect layered over a timeline.
	EventID *int `json:"event_id,omitempty"`
}

// New constructs a validated Effect.
//
// Location defaults to LocationEverywhere when empty. Returns an error
// wrapping ErrInvalidEffect if any field is out of range.
func New(effectType string, timestamp, duration int64) (Effect, error) {
	e := Effect{
		Type:      effectType,
		Timestamp: timestamp,
		Duration:  duration,
		Location:  LocationEverywhere,
	}
	if err := e.Validate(); err != nil {
		return Effect{}, err
	}
	return e, nil
}

// Validate checks the effect fields against the model constraints.
// An empty Location is normalised to LocationEverywhere.
func (e *Effect) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEffect, ErrEmptyType)
	}
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidEffect, ErrInvalidTimestamp, e.Timestamp)
	}
	if e.Duration < 0 {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidEffect, ErrInvalidDuration, e.Duration)
	}
	if e.Intensity != nil && (*e.Intensity < minIntensity || *e.Intensity > maxIntensity) {
		return fmt.Errorf("%w: %w (got %d)", ErrInvalidEffect, ErrInvalidIntensity, *e.Intensity)
	}
	if e.Location == "" {
		e.Location = LocationEverywhere
	}
	return nil
}

// End returns the effect's finishing offset (timestamp + duration) in ms.
func (e Effect) End() int64 {
	return e.Timestamp + e.Duration
}

// DeepCopy creates a complete independent copy of the Effect.
// The Parameters map is cloned so modifications to the copy do not
// affect the original.
func (e Effect) DeepCopy() Effect {
	cpy := e
	cpy.Intensity = cloneIntPtr(e.Intensity)
	cpy.EventID = cloneIntPtr(e.EventID)
	cpy.Parameters = DeepCopyParams(e.Parameters)
	return cpy
}

// DeepCopyParams creates a deep copy of a parameter map.
// Nested maps and slices are recursively copied.
func DeepCopyParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return DeepCopyParams(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		return v // Primitives are immutable
	}
}

// cloneIntPtr creates an independent copy of an *int.
func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
