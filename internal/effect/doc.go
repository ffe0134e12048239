// Package effect defines the sensory effect data model shared by every
// protocol adapter, the dispatcher and the playback scheduler.
//
// An Effect is one timed actuation instruction (light, wind, vibration,
// scent, haptic). A Timeline is an ordered, immutable collection of effects
// with a precomputed total duration, representing one playable scene.
//
// # Key Types
//
//   - Effect: a single timed instruction with optional intensity and location
//   - Timeline: validated, timestamp-sorted sequence of effects
//
// # Validation
//
// Out-of-range values are rejected at construction: timestamps and durations
// must be non-negative milliseconds, intensity (when set) must be 0–100.
// All constructors return errors wrapping ErrInvalidEffect, checkable with
// errors.Is().
//
// # Wire Shape
//
// The JSON tags match the common wire-level effect shape used by all
// adapters:
//
//	{"effect_type": "wind", "timestamp": 500, "duration": 1000,
//	 "intensity": 80, "location": "front", "parameters": {...},
//	 "event_id": 7}
package effect
