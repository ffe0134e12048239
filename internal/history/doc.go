// Package history records every dispatched device command in a SQLite
// audit log.
//
// RecordingSink decorates a dispatch.CommandSink: commands flow through
// to the wrapped sink first, then the outcome is written to the
// dispatch_history table. Recording is best effort; a storage failure
// is logged and never fails the dispatch itself. Nothing is read back
// from the log at startup, it exists for operators and debugging.
package history
