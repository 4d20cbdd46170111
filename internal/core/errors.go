package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSuggestionUnavailable marks a semantic-mapping failure. It is never fatal:
// the suggester falls back to the heuristic and reports it as a notice.
var ErrSuggestionUnavailable = errors.New("mapping suggestion unavailable")

// ErrSessionNotFound is returned for unknown or expired import sessions.
var ErrSessionNotFound = errors.New("import session not found")

// ErrUnknownEntity is returned when no catalog is registered for an entity.
var ErrUnknownEntity = errors.New("unknown entity")

// ErrNoReports is returned when an export matches no reports.
var ErrNoReports = errors.New("no reports to export")

// ParseError reports a file that could not be decoded.
// Nothing from the file is kept when it is returned.
type ParseError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.FileName, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError lists required fields that no header maps to.
type ValidationError struct {
	Missing []FieldDescriptor
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = f.Name
	}
	return fmt.Sprintf("missing required field mapping: %s", strings.Join(names, ", "))
}

// NoValidRowsError is returned when every row failed required-field checks.
type NoValidRowsError struct {
	Skipped []SkippedRow
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("no valid rows to import: %d rows skipped", len(e.Skipped))
}

// InsertError wraps a failed bulk insert. No row was written.
type InsertError struct {
	Entity EntityType
	Rows   int
	Err    error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert %d %s rows: %v", e.Rows, e.Entity, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// Message returns the backend failure text unchanged.
func (e *InsertError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// InvalidCell is a non-empty value that does not parse as its field's type.
type InvalidCell struct {
	Line  int
	Field FieldDescriptor
	Value string
}

func (c InvalidCell) kind() string {
	if c.Field.Type == FieldNumeric {
		return "number"
	}
	return c.Field.Type.String()
}

// CoercionError is returned before insert when rows that would be written
// hold values their column type cannot store. Cells is in row order.
type CoercionError struct {
	Entity EntityType
	Cells  []InvalidCell
}

func (e *CoercionError) Error() string {
	if len(e.Cells) == 0 {
		return fmt.Sprintf("invalid values in %s import", e.Entity)
	}
	first := e.Cells[0]
	msg := fmt.Sprintf("invalid %s in %s at row %d", first.kind(), first.Field.Name, first.Line)
	if len(e.Cells) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e.Cells)-1)
	}
	return msg
}

// Message names every bad cell with its value, for notices.
func (e *CoercionError) Message() string {
	parts := make([]string, len(e.Cells))
	for i, c := range e.Cells {
		name := c.Field.Label
		if name == "" {
			name = c.Field.Name
		}
		parts[i] = fmt.Sprintf("row %d %s %q", c.Line, name, c.Value)
	}
	return fmt.Sprintf("Nothing imported. Values that are not a valid %s: %s.",
		e.kinds(), strings.Join(parts, "; "))
}

func (e *CoercionError) kinds() string {
	var seen []string
	for _, c := range e.Cells {
		if k := c.kind(); !slices.Contains(seen, k) {
			seen = append(seen, k)
		}
	}
	return strings.Join(seen, " or ")
}

// TransitionError reports an operation attempted in the wrong session state.
type TransitionError struct {
	From SessionState
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s", e.Op, e.From)
}

// IsTransitionError reports whether err is a *TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsRecoverable reports whether a failed import leaves the session usable
// for another attempt with the same file.
func IsRecoverable(err error) bool {
	var ve *ValidationError
	var ie *InsertError
	var nv *NoValidRowsError
	var ce *CoercionError
	switch {
	case errors.As(err, &ve), errors.As(err, &ie), errors.As(err, &nv), errors.As(err, &ce):
		return true
	case errors.Is(err, ErrTooManyImports):
		return true
	default:
		return false
	}
}
