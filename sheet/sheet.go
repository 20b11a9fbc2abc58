// Package sheet is the RSVP record store: one row per submission, laid out
// like the organiser's spreadsheet (timestamp, name, status, guests, link).
package sheet

import (
	"context"
	"strings"
	"time"
)

// Status is the attendance answer stored in column C.
type Status string

const (
	StatusAttending    Status = "attending"
	StatusNotAttending Status = "not_attending"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusAttending || s == StatusNotAttending
}

const (
	// FirstDataRow is the index of the first record; row 1 holds headers
	FirstDataRow = 2

	// MaxRowIndex bounds updates to the sheet's usable range
	MaxRowIndex = 10000
)

// Record is one RSVP submission.
type Record struct {
	Timestamp  time.Time
	Name       string
	Status     Status
	GuestCount int // 0 when the cell is empty
	EditLink   string
}

// Row is a record together with its 1-based row index.
type Row struct {
	Index int
	Record
}

// Fields are the only columns an edit may touch.
type Fields struct {
	Name       string
	GuestCount int
}

// Sheet is the record collaborator used by the RSVP service.
// Errors returned by implementations are *Error values.
type Sheet interface {
	// AppendRow adds rec after the last row.
	AppendRow(ctx context.Context, rec Record) error

	// FindRow returns the first row for which match is true.
	FindRow(ctx context.Context, match func(Record) bool) (Row, bool, error)

	// UpdateRowFields overwrites name and guest count of the row at index.
	UpdateRowFields(ctx context.Context, index int, fields Fields) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

const formulaTriggers = "=+-@'"

// SanitizeCell neutralises spreadsheet formula injection by prefixing values
// that start with a formula trigger with a single quote. A leading quote is
// escaped the same way so UnsanitizeCell can undo it.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}
	if strings.ContainsRune(formulaTriggers, rune(value[0])) {
		return "'" + value
	}
	return value
}

// UnsanitizeCell reverses SanitizeCell.
func UnsanitizeCell(value string) string {
	if len(value) >= 2 && value[0] == '\'' && strings.ContainsRune(formulaTriggers, rune(value[1])) {
		return value[1:]
	}
	return value
}
