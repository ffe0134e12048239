// Package registry provides the protocol-agnostic device catalogue for
// the sensory runtime.
//
// Protocol adapters (HTTP, MQTT, CoAP, UPnP, WebSocket) register the
// devices they discover; the registry merges registrations of the same
// device arriving from different protocols, tracks which protocols can
// reach each device, and answers filtered queries.
//
// # Key Types
//
//   - DeviceInfo: one catalogued sensory-effect device
//   - ConnectionMode: how the device is reached (direct, isolated, hub)
//   - EventType: mutation events delivered to listeners
//
// # Protocol Isolation
//
// When isolation mode is enabled (SetIsolation), queries carrying a
// requesting protocol only see devices that protocol has registered.
// Isolation is a single mutable flag on the registry instance. It is
// never baked into stored devices and there is no process-wide global.
//
// # Listeners
//
// Listeners are invoked synchronously after every mutation, on the
// mutating goroutine, after the registry lock has been released, so a
// listener may query the registry or remove itself. A panic
// in a listener is recovered and logged, never propagated.
//
// # Thread Safety
//
// All operations are guarded by a single mutex per instance. Returned
// DeviceInfo values are deep copies; callers can safely modify them.
package registry
