// Package dispatch resolves abstract effect names to concrete device
// commands and forwards them to a device-command sink.
//
// The dispatcher owns a read-only routing configuration mapping each
// effect type to a target device, a command, and a set of parameter
// rules (enum-value mapping plus optional default). It holds no other
// mutable state, so any number of goroutines may dispatch concurrently;
// thread safety of the sink is the sink's own responsibility.
//
// # Error Policy
//
// The dispatcher never swallows errors: unknown effect types, misconfigured
// routes and sink failures all propagate to the caller, which is expected
// to translate them into protocol-specific responses.
package dispatch
