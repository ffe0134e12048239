package history

import "errors"

var (
	// ErrNilDB is returned when a repository is created without a database.
	ErrNilDB = errors.New("history: database cannot be nil")

	// ErrNilSink is returned when a recording sink is created without a
	// sink to wrap.
	ErrNilSink = errors.New("history: wrapped sink cannot be nil")
)
