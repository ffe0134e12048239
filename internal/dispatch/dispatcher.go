package dispatch

import (
	"fmt"
	"sort"

	"github.com/mulsemedia/sensory-core/internal/effect"
)

// EffectReconfigure is the reserved effect type that carries new renderer
// configuration instead of a device command.
const EffectReconfigure = "reconfigure"

// Parameter keys injected by DispatchEffectMetadata.
const (
	paramIntensity = "intensity"
	paramLocation  = "location"
)

// CommandSink is the external device-command execution surface the
// dispatcher forwards resolved commands to (driver or device manager).
//
// Implementations own their own thread safety and delivery semantics;
// errors they return propagate unchanged to the dispatcher's caller.
type CommandSink interface {
	// Send executes command on the device with the final parameter set.
	Send(deviceID, command string, params map[string]any) error

	// Reconfigure applies a new renderer configuration.
	Reconfigure(config map[string]any) error
}

// EffectSink is an optional upgrade of CommandSink for sinks that want
// the originating effect type alongside the resolved command, such as
// audit-logging decorators. When the configured sink implements it, the
// dispatcher calls SendEffect instead of Send.
type EffectSink interface {
	SendEffect(effectType, deviceID, command string, params map[string]any) error
}

// Dispatcher maps abstract effects to concrete device commands.
//
// It holds only the immutable routing config and the sink, so it is safe
// for unlimited concurrent readers.
type Dispatcher struct {
	cfg  *RoutingConfig
	sink CommandSink
}

// New creates a dispatcher over the given routing config and sink.
func New(cfg *RoutingConfig, sink CommandSink) *Dispatcher {
	if cfg == nil {
		cfg = &RoutingConfig{Effects: make(map[string]EffectRoute)}
	}
	return &Dispatcher{cfg: cfg, sink: sink}
}

// Dispatch resolves effectType and forwards the final parameters to the sink.
//
// Parameter handling per declared rule: a missing parameter with a default
// gets the default injected; a supplied value whose string form is a key in
// the rule's mapping table is substituted; any other supplied value passes
// through unchanged. Parameters not declared in any rule pass through
// untouched. The caller's map is never mutated.
//
// Returns ErrUnknownEffect for an unrouted effect type, and
// ErrMisconfiguredEffect when the route lacks a device or command. Sink
// failures propagate unchanged.
func (d *Dispatcher) Dispatch(effectType string, params map[string]any) error {
	route, ok := d.cfg.Effects[effectType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEffect, effectType)
	}
	if route.Device == "" || route.Command == "" {
		return fmt.Errorf("%w: %q", ErrMisconfiguredEffect, effectType)
	}
	if d.sink == nil {
		return ErrNoSink
	}

	final := effect.DeepCopyParams(params)
	if final == nil {
		final = make(map[string]any)
	}

	for _, rule := range route.Parameters {
		value, supplied := final[rule.Name]
		if !supplied {
			if rule.Default != nil {
				final[rule.Name] = rule.Default
			}
			continue
		}
		if mapped, found := rule.Mapping[fmt.Sprint(value)]; found {
			final[rule.Name] = mapped
		}
	}

	if es, ok := d.sink.(EffectSink); ok {
		return es.SendEffect(effectType, route.Device, route.Command, final)
	}
	return d.sink.Send(route.Device, route.Command, final)
}

// DispatchEffectMetadata routes a full effect through the dispatcher.
//
// The reserved "reconfigure" effect type is delegated straight to the
// sink's Reconfigure; Send is never invoked for it. For every other
// type, the effect's intensity (when set) and non-default location are
// injected into the parameters before dispatching.
func (d *Dispatcher) DispatchEffectMetadata(e effect.Effect) error {
	if e.Type == EffectReconfigure {
		if d.sink == nil {
			return ErrNoSink
		}
		return d.sink.Reconfigure(effect.DeepCopyParams(e.Parameters))
	}

	merged := effect.DeepCopyParams(e.Parameters)
	if merged == nil {
		merged = make(map[string]any)
	}
	if e.Intensity != nil {
		merged[paramIntensity] = *e.Intensity
	}
	if e.Location != "" && e.Location != effect.LocationEverywhere {
		merged[paramLocation] = e.Location
	}

	return d.Dispatch(e.Type, merged)
}

// SupportedEffects returns the routable effect types in sorted order.
func (d *Dispatcher) SupportedEffects() []string {
	names := make([]string, 0, len(d.cfg.Effects))
	for name := range d.cfg.Effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
