// Package database provides the SQLite connection and schema migration
// layer for the dispatch history store.
//
// The database is opened with WAL journaling and a busy timeout, and the
// connection pool is limited to a single connection to match SQLite's
// single-writer model. Schema migrations are embedded SQL files applied
// in version order at startup, each in its own transaction.
package database
