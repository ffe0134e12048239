package registry

import (
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// listenerEntry pairs a listener with its subscription handle.
type listenerEntry struct {
	id int
	fn Listener
}

// Registry is the shared device catalogue accessed concurrently by every
// protocol adapter.
//
// One mutex guards all state; hold time is O(number of devices) at worst
// and never spans listener callbacks or I/O. All public methods are
// thread-safe.
type Registry struct {
	mu        sync.Mutex
	devices   map[string]*DeviceInfo
	isolation bool
	listeners []listenerEntry
	nextID    int
	logger    Logger
}

// New creates an empty device registry with isolation disabled.
func New() *Registry {
	return &Registry{
		devices: make(map[string]*DeviceInfo),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Register adds a device to the catalogue or merges a repeat registration.
//
// If data.ID is already present the stored entry is merged: protocols are
// unioned (first-seen order preserved, duplicates dropped), descriptive
// fields are refreshed from any non-empty values in data, LastSeen is
// updated, and listeners receive EventUpdated. Otherwise a new entry is
// stored with Protocols = union({sourceProtocol}, data.Protocols) and
// listeners receive EventRegistered.
//
// Returns a deep copy of the stored entry.
func (r *Registry) Register(data DeviceInfo, sourceProtocol string) (*DeviceInfo, error) {
	if data.ID == "" {
		return nil, fmt.Errorf("%w (name %q)", ErrMissingID, data.Name)
	}
	if sourceProtocol == "" {
		return nil, fmt.Errorf("%w (device %q)", ErrMissingProtocol, data.ID)
	}

	now := time.Now().UTC()

	r.mu.Lock()
	existing, ok := r.devices[data.ID]

	var (
		stored *DeviceInfo
		event  EventType
	)
	if ok {
		mergeDevice(existing, &data, sourceProtocol, now)
		stored = existing
		event = EventUpdated
	} else {
		stored = newDevice(&data, sourceProtocol, now)
		r.devices[data.ID] = stored
		event = EventRegistered
	}

	result := stored.DeepCopy()
	r.mu.Unlock()

	r.logger.Debug("device registration",
		"id", result.ID,
		"event", string(event),
		"protocol", sourceProtocol,
	)
	r.notify(event, *result)

	return result, nil
}

// newDevice builds the stored entry for a first-time registration.
func newDevice(data *DeviceInfo, sourceProtocol string, now time.Time) *DeviceInfo {
	d := data.DeepCopy()
	d.Protocols = unionProtocols([]string{sourceProtocol}, data.Protocols)
	d.SourceProtocol = sourceProtocol
	d.RegisteredAt = now
	d.LastSeen = now
	if d.ConnectionMode == "" {
		d.ConnectionMode = ModeDirect
	}
	return d
}

// mergeDevice folds a repeat registration into the stored entry.
// The protocols union keeps first-seen order; descriptive fields are only
// replaced when the new payload supplies them.
func mergeDevice(existing, data *DeviceInfo, sourceProtocol string, now time.Time) {
	existing.Protocols = unionProtocols(existing.Protocols, append([]string{sourceProtocol}, data.Protocols...))
	existing.LastSeen = now

	if data.Name != "" {
		existing.Name = data.Name
	}
	if data.Type != "" {
		existing.Type = data.Type
	}
	if data.Address != "" {
		existing.Address = data.Address
	}
	if data.ConnectionMode != "" {
		existing.ConnectionMode = data.ConnectionMode
	}
	if len(data.Capabilities) > 0 {
		existing.Capabilities = make([]string, len(data.Capabilities))
		copy(existing.Capabilities, data.Capabilities)
	}
	for k, v := range data.Metadata {
		if existing.Metadata == nil {
			existing.Metadata = make(map[string]string, len(data.Metadata))
		}
		existing.Metadata[k] = v
	}
}

// unionProtocols merges protocol lists preserving first-seen order.
func unionProtocols(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, p := range list {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Unregister removes a device from the catalogue.
// Returns false (not an error) when the id is absent.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	dev, ok := r.devices[id]
	var removed DeviceInfo
	if ok {
		removed = *dev.DeepCopy()
		delete(r.devices, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	r.logger.Debug("device unregistered", "id", id)
	r.notify(EventUnregistered, removed)
	return true
}

// Get retrieves a device by id.
//
// requestingProtocol may be empty for an unfiltered lookup. When isolation
// mode is enabled and a protocol is supplied, devices not registered through
// that protocol are reported as not found.
func (r *Registry) Get(id, requestingProtocol string) (*DeviceInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[id]
	if !ok || !r.visible(dev, requestingProtocol) {
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, id)
	}
	return dev.DeepCopy(), nil
}

// List retrieves all devices visible to the requesting protocol.
// requestingProtocol may be empty for an unfiltered listing.
func (r *Registry) List(requestingProtocol string) []DeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices := make([]DeviceInfo, 0, len(r.devices))
	for _, d := range r.devices {
		if r.visible(d, requestingProtocol) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// ByProtocol retrieves all devices registered through protocol p.
func (r *Registry) ByProtocol(p string) []DeviceInfo {
	return r.filter(func(d *DeviceInfo) bool { return d.HasProtocol(p) })
}

// ByType retrieves all devices of device type t.
func (r *Registry) ByType(t string) []DeviceInfo {
	return r.filter(func(d *DeviceInfo) bool { return d.Type == t })
}

// ByCapability retrieves all devices declaring capability c.
func (r *Registry) ByCapability(c string) []DeviceInfo {
	return r.filter(func(d *DeviceInfo) bool { return d.HasCapability(c) })
}

// filter returns deep copies of all devices matching pred.
func (r *Registry) filter(pred func(*DeviceInfo) bool) []DeviceInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var devices []DeviceInfo
	for _, d := range r.devices {
		if pred(d) {
			devices = append(devices, *d.DeepCopy())
		}
	}
	return devices
}

// SetIsolation toggles protocol isolation mode for this instance.
func (r *Registry) SetIsolation(enabled bool) {
	r.mu.Lock()
	changed := r.isolation != enabled
	r.isolation = enabled
	r.mu.Unlock()

	if changed {
		r.logger.Info("protocol isolation changed", "enabled", enabled)
	}
}

// IsolationEnabled reports whether protocol isolation mode is active.
func (r *Registry) IsolationEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isolation
}

// visible applies the isolation filter. Callers must hold r.mu.
func (r *Registry) visible(d *DeviceInfo, requestingProtocol string) bool {
	if !r.isolation || requestingProtocol == "" {
		return true
	}
	return d.HasProtocol(requestingProtocol)
}

// Count returns the number of catalogued devices (unfiltered).
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// AddListener subscribes a mutation listener and returns its handle.
func (r *Registry) AddListener(fn Listener) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.listeners = append(r.listeners, listenerEntry{id: r.nextID, fn: fn})
	return r.nextID
}

// RemoveListener unsubscribes the listener with the given handle.
// Returns false if the handle is unknown. Safe to call from within a
// listener callback.
func (r *Registry) RemoveListener(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.listeners {
		if entry.id == id {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// notify invokes every listener with the event. The listener list is
// snapshotted first so a listener may unsubscribe itself during the
// callback; panics are recovered and logged.
func (r *Registry) notify(event EventType, dev DeviceInfo) {
	r.mu.Lock()
	snapshot := make([]listenerEntry, len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.Unlock()

	for _, entry := range snapshot {
		r.invoke(entry, event, dev)
	}
}

// invoke calls one listener, containing any panic.
func (r *Registry) invoke(entry listenerEntry, event EventType, dev DeviceInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("registry listener panicked",
				"listener_id", entry.id,
				"event", string(event),
				"device_id", dev.ID,
				"panic", rec,
			)
		}
	}()
	entry.fn(event, *dev.DeepCopy())
}

// Stats holds on-demand registry statistics.
type Stats struct {
	TotalDevices int            `json:"total_devices"`
	ByProtocol   map[string]int `json:"by_protocol"`
	ByType       map[string]int `json:"by_type"`
	Isolation    bool           `json:"isolation"`
}

// GetStats recomputes statistics from the currently visible device set.
// Counts are never maintained incrementally, so they cannot drift.
func (r *Registry) GetStats(requestingProtocol string) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		ByProtocol: make(map[string]int),
		ByType:     make(map[string]int),
		Isolation:  r.isolation,
	}

	for _, d := range r.devices {
		if !r.visible(d, requestingProtocol) {
			continue
		}
		stats.TotalDevices++
		for _, p := range d.Protocols {
			stats.ByProtocol[p]++
		}
		if d.Type != "" {
			stats.ByType[d.Type]++
		}
	}

	return stats
}
