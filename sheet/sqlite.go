package sheet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS rsvp_rows (
	row_index   INTEGER PRIMARY KEY,
	created_at  TEXT    NOT NULL,
	name        TEXT    NOT NULL,
	status      TEXT    NOT NULL,
	guest_count INTEGER,
	edit_link   TEXT    NOT NULL
)`

// SQLiteSheet persists RSVP rows in a SQLite database.
type SQLiteSheet struct {
	sqlDB *sql.DB
}

// Ensure SQLiteSheet implements Sheet interface
var _ Sheet = (*SQLiteSheet)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteSheet, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sheet path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteSheet{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteSheet) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendRow inserts rec after the current last row.
func (s *SQLiteSheet) AppendRow(ctx context.Context, rec Record) error {
	const op = "append"

	var guests sql.NullInt64
	if rec.GuestCount > 0 {
		guests = sql.NullInt64{Int64: int64(rec.GuestCount), Valid: true}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rsvp_rows (row_index, created_at, name, status, guest_count, edit_link)
		 VALUES ((SELECT COALESCE(MAX(row_index), ?) + 1 FROM rsvp_rows), ?, ?, ?, ?, ?)`,
		FirstDataRow-1,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		SanitizeCell(rec.Name),
		string(rec.Status),
		guests,
		rec.EditLink,
	)
	if err != nil {
		return classify(op, err)
	}
	return nil
}

// FindRow scans rows in order and returns the first one match accepts.
func (s *SQLiteSheet) FindRow(ctx context.Context, match func(Record) bool) (Row, bool, error) {
	const op = "find"

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT row_index, created_at, name, status, guest_count, edit_link
		 FROM rsvp_rows ORDER BY row_index`)
	if err != nil {
		return Row{}, false, classify(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row       Row
			createdAt string
			status    string
			guests    sql.NullInt64
		)
		if err := rows.Scan(&row.Index, &createdAt, &row.Name, &status, &guests, &row.EditLink); err != nil {
			return Row{}, false, classify(op, err)
		}
		row.Name = UnsanitizeCell(row.Name)
		row.Status = Status(status)
		if guests.Valid {
			row.GuestCount = int(guests.Int64)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			row.Timestamp = ts
		}
		if match(row.Record) {
			return row, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return Row{}, false, classify(op, err)
	}
	return Row{}, false, nil
}

// UpdateRowFields overwrites name and guest count of the row at index.
func (s *SQLiteSheet) UpdateRowFields(ctx context.Context, index int, fields Fields) error {
	const op = "update"

	if index < FirstDataRow || index > MaxRowIndex {
		return &Error{Op: op, Kind: KindNotFound, Err: fmt.Errorf("%w: %d", ErrInvalidRowIndex, index)}
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rsvp_rows SET name = ?, guest_count = ? WHERE row_index = ?`,
		SanitizeCell(fields.Name), fields.GuestCount, index)
	if err != nil {
		return classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return &Error{Op: op, Kind: KindNotFound, Err: fmt.Errorf("%w: %d", ErrRowNotFound, index)}
	}
	return nil
}

// Ping checks the database handle.
func (s *SQLiteSheet) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// classify maps a driver error onto the sheet error kinds.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Kind: KindTimeout, Err: err}
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return &Error{Op: op, Kind: KindTimeout, Err: err}
		case sqlite3lib.SQLITE_PERM, sqlite3lib.SQLITE_AUTH, sqlite3lib.SQLITE_READONLY, sqlite3lib.SQLITE_CANTOPEN:
			return &Error{Op: op, Kind: KindAuthFailed, Err: err}
		case sqlite3lib.SQLITE_FULL:
			return &Error{Op: op, Kind: KindQuotaExceeded, Err: err}
		}
	}
	return &Error{Op: op, Kind: KindUnknown, Err: err}
}
