package registry

import "errors"

// Domain errors for the registry package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, registry.ErrMissingID) {
//	    // reject the registration payload
//	}
var (
	// ErrMissingID is returned when a registration payload has no device id.
	ErrMissingID = errors.New("registry: device id required")

	// ErrMissingProtocol is returned when no source protocol is supplied.
	ErrMissingProtocol = errors.New("registry: source protocol required")

	// ErrDeviceNotFound is returned when a device id does not exist or is
	// not visible to the requesting protocol.
	ErrDeviceNotFound = errors.New("registry: device not found")
)
