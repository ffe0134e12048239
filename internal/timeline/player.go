package timeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/mulsemedia/sensory-core/internal/effect"
)

// Timing constants.
const (
	// defaultTick is the scheduling loop poll interval. Firing jitter is
	// bounded by this value.
	defaultTick = 10 * time.Millisecond

	// defaultStopTimeout bounds how long Stop waits for the loop to exit.
	defaultStopTimeout = time.Second
)

// Dispatcher is the interface the player needs from the effect dispatcher.
type Dispatcher interface {
	// DispatchEffectMetadata routes one effect to its device command.
	DispatchEffectMetadata(e effect.Effect) error
}

// Logger defines the logging interface used by the Player.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// scheduledEffect binds an effect to an absolute wall-clock fire time.
// Created on Start/Seek, fired at most once, discarded on Stop.
type scheduledEffect struct {
	effect   effect.Effect
	fireAt   time.Time
	executed bool
}

// Status is a point-in-time snapshot of the player.
type Status struct {
	IsRunning      bool  `json:"is_running"`
	IsPaused       bool  `json:"is_paused"`
	Position       int64 `json:"position"`
	TotalDuration  int64 `json:"total_duration"`
	PendingEffects int   `json:"pending_effects"`
}

// Player drives a loaded timeline, dispatching each effect at its absolute
// wall-clock fire time with pause/resume/seek semantics.
//
// All public methods are thread-safe; the scheduling loop and the mutators
// serialize on one mutex whose hold time stays well under one tick.
type Player struct {
	mu sync.Mutex

	dispatcher Dispatcher
	logger     Logger

	tick        time.Duration
	stopTimeout time.Duration

	tl        *effect.Timeline
	scheduled []*scheduledEffect

	running    bool
	paused     bool
	position   int64 // milliseconds into the timeline
	startClock time.Time
	pausedAt   time.Time

	stopCh chan struct{}
	doneCh chan struct{}

	onStart    func()
	onStop     func()
	onComplete func()
	onEffect   func(effect.Effect)
}

// NewPlayer creates an idle player bound to the given dispatcher.
func NewPlayer(dispatcher Dispatcher) *Player {
	return &Player{
		dispatcher:  dispatcher,
		logger:      noopLogger{},
		tick:        defaultTick,
		stopTimeout: defaultStopTimeout,
	}
}

// SetLogger sets the logger for the player.
func (p *Player) SetLogger(logger Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// SetTickInterval overrides the scheduling loop poll interval.
// Valid only while Idle.
func (p *Player) SetTickInterval(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("%w: cannot change tick while running", ErrInvalidState)
	}
	if d > 0 {
		p.tick = d
	}
	return nil
}

// SetStopTimeout overrides how long Stop waits for the scheduling loop
// to exit. Valid only while Idle.
func (p *Player) SetStopTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("%w: cannot change stop timeout while running", ErrInvalidState)
	}
	if d > 0 {
		p.stopTimeout = d
	}
	return nil
}

// SetOnStart registers a callback fired when playback starts.
func (p *Player) SetOnStart(fn func()) { p.setCallback(&p.onStart, fn) }

// SetOnStop registers a callback fired when playback is stopped.
func (p *Player) SetOnStop(fn func()) { p.setCallback(&p.onStop, fn) }

// SetOnComplete registers a callback fired on natural completion.
func (p *Player) SetOnComplete(fn func()) { p.setCallback(&p.onComplete, fn) }

func (p *Player) setCallback(slot *func(), fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	*slot = fn
}

// SetOnEffect registers a callback fired after each effect dispatch.
func (p *Player) SetOnEffect(fn func(effect.Effect)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEffect = fn
}

// Load stores a timeline for playback. Valid only while Idle.
// Resets the position and discards any previously scheduled effects.
func (p *Player) Load(tl *effect.Timeline) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("%w: cannot load while running", ErrInvalidState)
	}
	p.tl = tl
	p.position = 0
	p.scheduled = nil
	return nil
}

// Start begins playback from the current position.
//
// Valid only from Idle with a non-empty loaded timeline. Every effect with
// timestamp >= position is bound to an absolute fire time, the scheduling
// loop is spawned, and the player transitions to Running.
func (p *Player) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("%w: already running", ErrInvalidState)
	}
	if p.tl.Len() == 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidState, ErrNoTimeline)
	}

	now := time.Now()
	p.startClock = now.Add(-time.Duration(p.position) * time.Millisecond)
	p.scheduled = p.scheduled[:0]
	for _, e := range p.tl.Effects {
		if e.Timestamp < p.position {
			continue
		}
		p.scheduled = append(p.scheduled, &scheduledEffect{
			effect: e,
			fireAt: now.Add(time.Duration(e.Timestamp-p.position) * time.Millisecond),
		})
	}

	p.running = true
	p.paused = false
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.loop(p.stopCh, p.doneCh)

	onStart := p.onStart
	position := p.position
	pending := len(p.scheduled)
	p.mu.Unlock()

	p.logger.Info("playback started",
		"position_ms", position,
		"pending_effects", pending,
	)
	p.safeCallback("on_start", onStart)
	return nil
}

// loop polls at the tick interval until stopped or naturally complete.
// The channels are passed in so a concurrent Stop/Start cannot swap them
// out from under the goroutine.
func (p *Player) loop(stopCh, doneCh chan struct{}) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if p.step(now) {
				return
			}
		}
	}
}

// step advances one tick: updates the position, fires due effects, and
// detects natural completion. Returns true when the loop should exit.
// Dispatching and callbacks run after the mutex is released.
func (p *Player) step(now time.Time) bool {
	p.mu.Lock()
	if !p.running || p.paused {
		p.mu.Unlock()
		return false
	}

	p.position = now.Sub(p.startClock).Milliseconds()

	// Scheduled effects are in timestamp order, so due effects come out
	// in firing order.
	var due []effect.Effect
	for _, se := range p.scheduled {
		if !se.executed && !se.fireAt.After(now) {
			se.executed = true
			due = append(due, se.effect)
		}
	}

	complete := p.position >= p.tl.TotalDuration
	if complete {
		// Natural completion returns to Idle but keeps the final position;
		// only Stop resets it to 0.
		p.running = false
		p.paused = false
	}

	onEffect := p.onEffect
	onComplete := p.onComplete
	p.mu.Unlock()

	for _, e := range due {
		if err := p.dispatcher.DispatchEffectMetadata(e); err != nil {
			p.logger.Error("effect dispatch failed",
				"effect_type", e.Type,
				"timestamp_ms", e.Timestamp,
				"error", err,
			)
		}
		if onEffect != nil {
			p.safeEffectCallback(onEffect, e)
		}
	}

	if complete {
		p.logger.Info("playback complete")
		p.safeCallback("on_complete", onComplete)
		return true
	}
	return false
}

// Pause freezes playback. Valid only while Running and not already Paused.
// The loop keeps ticking but skips fire checks and position updates.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.paused {
		return fmt.Errorf("%w: not running or already paused", ErrInvalidState)
	}
	now := time.Now()
	p.pausedAt = now
	p.position = now.Sub(p.startClock).Milliseconds()
	p.paused = true
	p.logger.Info("playback paused", "position_ms", p.position)
	return nil
}

// Resume continues playback after Pause. The start clock is shifted by the
// paused wall time, so the position does not jump across the pause gap.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || !p.paused {
		return fmt.Errorf("%w: not paused", ErrInvalidState)
	}
	p.startClock = p.startClock.Add(time.Since(p.pausedAt))
	p.pausedAt = time.Time{}
	p.paused = false
	p.logger.Info("playback resumed", "position_ms", p.position)
	return nil
}

// Stop halts playback and returns the player to Idle with position 0.
//
// Idempotent and valid from any state. The scheduling loop is signalled and
// joined with a bounded timeout; if the join times out a leak warning is
// logged and shutdown proceeds anyway.
func (p *Player) Stop() {
	p.mu.Lock()
	wasRunning := p.running
	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh, p.doneCh = nil, nil
	p.running = false
	p.paused = false
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		select {
		case <-doneCh:
		case <-time.After(p.stopTimeout):
			p.logger.Warn("scheduling loop did not exit in time, proceeding",
				"timeout", p.stopTimeout,
			)
		}
	}

	p.mu.Lock()
	p.position = 0
	p.scheduled = nil
	p.startClock = time.Time{}
	p.pausedAt = time.Time{}
	onStop := p.onStop
	p.mu.Unlock()

	if wasRunning {
		p.logger.Info("playback stopped")
		p.safeCallback("on_stop", onStop)
	}
}

// Seek moves the playback position, clamped into [0, TotalDuration].
//
// While Running (paused or not) it stops and restarts the loop so the
// remaining effects get fresh absolute fire times; while Idle it only sets
// the position for the next Start.
func (p *Player) Seek(ms int64) error {
	p.mu.Lock()
	if p.tl == nil {
		p.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidState, ErrNoTimeline)
	}
	if ms < 0 {
		ms = 0
	}
	if ms > p.tl.TotalDuration {
		ms = p.tl.TotalDuration
	}
	wasRunning := p.running
	p.mu.Unlock()

	if wasRunning {
		p.Stop()
	}

	p.mu.Lock()
	p.position = ms
	p.mu.Unlock()
	p.logger.Debug("seek", "position_ms", ms, "restart", wasRunning)

	if wasRunning {
		return p.Start()
	}
	return nil
}

// AddEventEffect dispatches a one-off triggered effect immediately and
// synchronously, independent of the playback state machine.
//
// The effect must carry an event id; dispatch errors propagate unchanged.
func (p *Player) AddEventEffect(e effect.Effect) error {
	if e.EventID == nil {
		return fmt.Errorf("%w: event effect requires an event id", ErrInvalidState)
	}
	p.logger.Debug("event effect",
		"effect_type", e.Type,
		"event_id", *e.EventID,
	)
	return p.dispatcher.DispatchEffectMetadata(e)
}

// Position returns the playback position in milliseconds.
//
// While Running it is the live clock-derived value (frozen at the pause
// instant when Paused); otherwise the stored value. Never exceeds the
// loaded timeline's total duration.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked(time.Now())
}

// positionLocked computes the current position. Callers must hold p.mu.
func (p *Player) positionLocked(now time.Time) int64 {
	pos := p.position
	if p.running && !p.paused {
		pos = now.Sub(p.startClock).Milliseconds()
	}
	if p.tl != nil && pos > p.tl.TotalDuration {
		pos = p.tl.TotalDuration
	}
	return pos
}

// Status returns a snapshot of the player state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := 0
	for _, se := range p.scheduled {
		if !se.executed {
			pending++
		}
	}

	var total int64
	if p.tl != nil {
		total = p.tl.TotalDuration
	}

	return Status{
		IsRunning:      p.running,
		IsPaused:       p.paused,
		Position:       p.positionLocked(time.Now()),
		TotalDuration:  total,
		PendingEffects: pending,
	}
}

// safeCallback invokes a user callback, containing any panic.
func (p *Player) safeCallback(name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("player callback panicked", "callback", name, "panic", rec)
		}
	}()
	fn()
}

// safeEffectCallback invokes the per-effect callback, containing any panic.
func (p *Player) safeEffectCallback(fn func(effect.Effect), e effect.Effect) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("player callback panicked",
				"callback", "on_effect",
				"effect_type", e.Type,
				"panic", rec,
			)
		}
	}()
	fn(e.DeepCopy())
}
