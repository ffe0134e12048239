// Package logging provides structured logging for Sensory Core built on
// log/slog.
//
// Every log record carries the service name and build version. Components
// derive their own loggers with With so records can be traced back to a
// subsystem:
//
//	log := logging.New(cfg.Logging, version)
//	playerLog := log.With("component", "player")
package logging
