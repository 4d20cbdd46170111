// Package core provides the business logic for spreadsheet imports.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"fmt"
	"time"
)

// EntityType identifies a destination table family with its own catalog.
type EntityType string

const (
	EntityCustomers EntityType = "customers"
	EntityRuns      EntityType = "runs"
)

// FieldType represents the coercion applied to a mapped source value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldBool
	FieldDate
)

// String returns the lower-case type name used in API payloads.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	case FieldDate:
		return "date"
	default:
		return "value"
	}
}

// MarshalText lets FieldType render as its name in JSON.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a type name written by MarshalText.
func (t *FieldType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*t = FieldText
	case "numeric":
		*t = FieldNumeric
	case "bool":
		*t = FieldBool
	case "date":
		*t = FieldDate
	default:
		return fmt.Errorf("unknown field type %q", b)
	}
	return nil
}

// Skip is the mapping target meaning "ignore this source column".
// It is never a field name in any catalog.
const Skip = "skip"

// FieldDescriptor describes one destination field.
type FieldDescriptor struct {
	Name        string    `json:"name"`        // Machine name, unique within a catalog
	Label       string    `json:"label"`       // Human label shown in the mapping UI
	Description string    `json:"description"` // Natural-language meaning, used for matching
	Required    bool      `json:"required"`
	Type        FieldType `json:"type"`
}

// Format is the declared encoding of an uploaded file.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

// SourceRecord maps a source header to its raw cell value.
type SourceRecord map[string]string

// SourceRow is one data row together with the line it came from.
type SourceRow struct {
	Line   int          // 1-based line (CSV) or sheet row number
	Values SourceRecord // Keyed by exactly the table's headers
}

// SourceTable is the parsed content of one uploaded file.
// It is never modified after ReadTable returns it.
type SourceTable struct {
	FileName string
	Format   Format
	Headers  []string
	Rows     []SourceRow
}

// ColumnMapping assigns every source header a field name or Skip.
type ColumnMapping map[string]string

// Clone returns an independent copy of the mapping.
func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SkippedRow records a source row that was not imported.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportOutcome is the result of one successful executor run.
type ImportOutcome struct {
	Entity   EntityType    `json:"entity"`
	Inserted int           `json:"inserted"`
	Skipped  []SkippedRow  `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// ReportRow is one service report joined with its run.
type ReportRow struct {
	ReportDate  time.Time
	ServiceID   string
	Technician  string
	SiteOfficer string
	ClientEmail string
	Comments    string
	Client      string
	Suburb      string
}

// ReportFilter narrows the exported reports.
// Search matches service id, technician, site officer or client email.
type ReportFilter struct {
	Search     string
	Technician string
}
