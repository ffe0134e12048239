// Package timeline schedules an ordered set of timed effects and drives
// the effect dispatcher at the right wall-clock moments.
//
// # State Machine
//
// A Player is Idle, Running, or Paused (a sub-state of Running):
//
//	Load   : Idle → Idle (timeline stored, position reset)
//	Start  : Idle → Running (requires a loaded, non-empty timeline)
//	Pause  : Running → Paused
//	Resume : Paused → Running
//	Stop   : any → Idle (idempotent; position reset to 0)
//	Seek   : clamps into [0, total]; restarts the loop when Running
//
// Natural completion also returns to Idle but leaves the position at its
// final value; only Stop resets it to 0.
//
// # Scheduling
//
// Start binds every remaining effect to an absolute wall-clock fire time;
// a polling loop (default 10ms tick) fires each effect at most once when
// its fire time is reached. Pause/resume is a single start-clock shift, so
// paused wall time never advances the playback position and no pending
// effect has to be rescheduled.
//
// # Concurrency
//
// The loop and the public mutators serialize on one mutex with hold times
// well under a tick; dispatching and user callbacks run outside the lock.
// Callback panics are recovered and logged, never propagated.
package timeline
