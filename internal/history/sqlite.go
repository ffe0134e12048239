package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mulsemedia/sensory-core/internal/infrastructure/database"
)

// defaultListLimit caps list queries when the caller passes limit <= 0.
const defaultListLimit = 100

// SQLiteRepository persists dispatch records in the dispatch_history
// table.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository over an open database. The
// schema must already be migrated.
func NewSQLiteRepository(db *database.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &SQLiteRepository{db: db}, nil
}

// Insert appends a record to the log.
func (r *SQLiteRepository) Insert(ctx context.Context, rec Record) error {
	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dispatch_history
			(id, effect_type, device_id, command, parameters, status, error_msg, dispatched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.EffectType,
		rec.DeviceID,
		rec.Command,
		string(params),
		rec.Status,
		rec.ErrorMsg,
		rec.DispatchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting dispatch record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return r.list(ctx, `
		SELECT id, effect_type, device_id, command, parameters, status, error_msg, dispatched_at
		FROM dispatch_history
		ORDER BY dispatched_at DESC
		LIMIT ?
	`, clampLimit(limit))
}

// ListByDevice returns up to limit records for one device, newest first.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Record, error) {
	return r.list(ctx, `
		SELECT id, effect_type, device_id, command, parameters, status, error_msg, dispatched_at
		FROM dispatch_history
		WHERE device_id = ?
		ORDER BY dispatched_at DESC
		LIMIT ?
	`, deviceID, clampLimit(limit))
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dispatch history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dispatch history: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec          Record
		params       string
		dispatchedAt string
		errorMsg     sql.NullString
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.EffectType,
		&rec.DeviceID,
		&rec.Command,
		&params,
		&rec.Status,
		&errorMsg,
		&dispatchedAt,
	); err != nil {
		return Record{}, fmt.Errorf("scanning dispatch record: %w", err)
	}

	if params != "" && params != "null" {
		if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
			return Record{}, fmt.Errorf("decoding parameters for %s: %w", rec.ID, err)
		}
	}
	if errorMsg.Valid {
		rec.ErrorMsg = &errorMsg.String
	}

	// Timestamp format is controlled by Insert.
	rec.DispatchedAt, _ = time.Parse(time.RFC3339Nano, dispatchedAt)

	return rec, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
