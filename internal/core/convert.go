package core

// convert.go turns raw spreadsheet cells into PostgreSQL values.
//
// These functions handle the messy reality of customer spreadsheets:
//   - Multiple date formats (AU/US, ISO, long form)
//   - Currency symbols and thousand separators in numbers
//   - Excel formula prefixes (="value")
//
// All ToPg* functions return pgtype values with Valid=false for empty or
// unparsable input. Coerce tells the two apart so a bad cell is reported
// instead of written as NULL.

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spf13/cast"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"2/1/06", "02/01/06", "2-1-06", "2.1.06", "02.01.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05",
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
		"Jan 2, 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
	}
)

// truthy holds the lower-case spellings that coerce to true.
var truthy = map[string]bool{"true": true, "1": true, "yes": true}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date.
// Numeric dates are read day-first; two-digit years use TwoDigitYearPivot.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: truncateDay(t), Valid: true}
		}
	}

	currentYear := time.Now().Year()
	pivotYear := currentYear + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToPgNumeric converts a string to pgtype.Numeric.
// Handles currency symbols, thousands separators, and accounting format (parentheses for negative).
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return pgtype.Numeric{Valid: false}
	}

	f, err := cast.ToFloat64E(s)
	if err != nil {
		return pgtype.Numeric{Valid: false}
	}
	if isNegative {
		f = -f
	}

	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{Valid: false}
	}

	return n
}

// ToPgBool converts a string to pgtype.Bool.
// Any non-empty value is valid; it is true only for true, 1 or yes
// (case-insensitive).
func ToPgBool(s string) pgtype.Bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return pgtype.Bool{Valid: false}
	}
	return pgtype.Bool{Bool: truthy[s], Valid: true}
}

// ErrInvalidValue marks a non-empty cell that does not parse as its
// field's numeric or date type.
var ErrInvalidValue = errors.New("invalid value")

// Coerce converts one raw cell for the given field. A nil value means the
// cell is absent. Numeric and date cells are cleaned of spreadsheet
// artifacts first and return ErrInvalidValue when they still do not parse;
// text is only trimmed and bool accepts any non-empty value.
func Coerce(field FieldDescriptor, raw string) (any, error) {
	switch field.Type {
	case FieldNumeric:
		raw = CleanCell(raw)
		if raw == "" {
			return nil, nil
		}
		n := ToPgNumeric(raw)
		if !n.Valid {
			return nil, ErrInvalidValue
		}
		return n, nil
	case FieldDate:
		raw = CleanCell(raw)
		if raw == "" {
			return nil, nil
		}
		d := ToPgDate(raw)
		if !d.Valid {
			return nil, ErrInvalidValue
		}
		return d, nil
	case FieldBool:
		if b := ToPgBool(raw); b.Valid {
			return b, nil
		}
		return nil, nil
	default:
		if t := ToPgText(raw); t.Valid {
			return t, nil
		}
		return nil, nil
	}
}

// FieldValues holds the coerced, present values of one row keyed by field name.
type FieldValues map[string]any

// Text returns the text value of a field, or an invalid Text when absent.
func (v FieldValues) Text(name string) pgtype.Text {
	t, _ := v[name].(pgtype.Text)
	return t
}

// Bool returns the boolean value of a field, or an invalid Bool when absent.
func (v FieldValues) Bool(name string) pgtype.Bool {
	b, _ := v[name].(pgtype.Bool)
	return b
}

// Date returns the date value of a field, or an invalid Date when absent.
func (v FieldValues) Date(name string) pgtype.Date {
	d, _ := v[name].(pgtype.Date)
	return d
}

// Numeric returns the numeric value of a field, or an invalid Numeric when absent.
func (v FieldValues) Numeric(name string) pgtype.Numeric {
	n, _ := v[name].(pgtype.Numeric)
	return n
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
