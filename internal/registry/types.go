package registry

import "time"

// ConnectionMode describes how commands reach a device.
type ConnectionMode string

// ConnectionMode constants.
const (
	ModeDirect   ConnectionMode = "direct"
	ModeIsolated ConnectionMode = "isolated"
	ModeHub      ConnectionMode = "hub"
)

// EventType identifies a registry mutation delivered to listeners.
type EventType string

// EventType constants.
const (
	EventRegistered   EventType = "device_registered"
	EventUpdated      EventType = "device_updated"
	EventUnregistered EventType = "device_unregistered"
)

// Listener is a callback invoked after every registry mutation.
//
// It receives the event type and a deep copy of the affected device.
// Listeners run synchronously on the mutating goroutine; panics are
// recovered and logged by the registry.
type Listener func(event EventType, dev DeviceInfo)

// DeviceInfo represents one catalogued sensory-effect device.
type DeviceInfo struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Classification
	Type string `json:"type"`

	// Address is the protocol-specific endpoint (URI, topic, serial port).
	Address string `json:"address"`

	// Protocols lists every protocol this device was registered through,
	// in first-seen order, deduplicated. Always contains SourceProtocol.
	Protocols []string `json:"protocols"`

	// Capabilities lists what the device can render (light, wind, ...).
	Capabilities []string `json:"capabilities,omitempty"`

	// ConnectionMode defaults to direct.
	ConnectionMode ConnectionMode `json:"connection_mode"`

	// Metadata carries free-form adapter annotations.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Timestamps
	RegisteredAt time.Time `json:"registered_at"`
	LastSeen     time.Time `json:"last_seen"`

	// SourceProtocol is the protocol of the first registration.
	SourceProtocol string `json:"source_protocol"`
}

// DeepCopy creates a complete independent copy of the DeviceInfo.
// Slice and map fields are cloned so modifications to the copy do not
// affect the registry's stored entry.
func (d *DeviceInfo) DeepCopy() *DeviceInfo {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	if d.Protocols != nil {
		cpy.Protocols = make([]string, len(d.Protocols))
		copy(cpy.Protocols, d.Protocols)
	}
	if d.Capabilities != nil {
		cpy.Capabilities = make([]string, len(d.Capabilities))
		copy(cpy.Capabilities, d.Capabilities)
	}
	if d.Metadata != nil {
		cpy.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			cpy.Metadata[k] = v
		}
	}

	return &cpy
}

// HasProtocol reports whether the device was registered through p.
func (d *DeviceInfo) HasProtocol(p string) bool {
	for _, proto := range d.Protocols {
		if proto == p {
			return true
		}
	}
	return false
}

// HasCapability reports whether the device declares capability c.
func (d *DeviceInfo) HasCapability(c string) bool {
	for _, cap := range d.Capabilities {
		if cap == c {
			return true
		}
	}
	return false
}
