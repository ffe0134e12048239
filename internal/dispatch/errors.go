package dispatch

import "errors"

// Domain errors for the dispatch package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, dispatch.ErrUnknownEffect) {
//	    // translate to a protocol-level "not found" response
//	}
var (
	// ErrUnknownEffect is returned when no route exists for an effect type.
	ErrUnknownEffect = errors.New("dispatch: unknown effect type")

	// ErrMisconfiguredEffect is returned when a route lacks a device or command.
	ErrMisconfiguredEffect = errors.New("dispatch: route missing device or command")

	// ErrNoSink is returned when the dispatcher was built without a sink.
	ErrNoSink = errors.New("dispatch: no command sink configured")
)
