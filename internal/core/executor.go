package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/hygieneops/internal/logging"
)

// DataSink persists a batch of records. Insert is all or nothing: on error
// no record of the batch was written.
type DataSink interface {
	Insert(ctx context.Context, entity EntityType, records []DestinationRecord) error
}

// Notifier receives user-facing progress messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// LogNotifier writes notices to a slog logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// Info implements Notifier.
func (n LogNotifier) Info(msg string) { n.logger().Info(msg, "notice", true) }

// Error implements Notifier.
func (n LogNotifier) Error(msg string) { n.logger().Error(msg, "notice", true) }

// Executor applies a confirmed mapping and writes the valid rows.
type Executor struct {
	sink     DataSink
	notifier Notifier
}

// NewExecutor creates an executor. A nil notifier logs through slog.
func NewExecutor(sink DataSink, notifier Notifier) *Executor {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Executor{sink: sink, notifier: notifier}
}

// Execute transforms every row of table and inserts the valid ones in one
// call. table and mapping are only read.
//
// Errors: *ValidationError if a required field is unmapped (nothing read),
// *NoValidRowsError if every row is missing a required value (no insert),
// *CoercionError if a row to be written holds an unparsable number or date
// (no insert), *InsertError if the sink fails (nothing written).
func (e *Executor) Execute(ctx context.Context, table *SourceTable, cat *Catalog, mapping ColumnMapping) (*ImportOutcome, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "entity", cat.Entity, "file", table.FileName)

	if err := ValidateMapping(cat, table.Headers, mapping).Err(); err != nil {
		return nil, err
	}

	records, skipped, invalid := Transform(table, cat, mapping)

	if len(records) == 0 {
		e.notifier.Error(fmt.Sprintf("No valid rows to import. All rows are missing %s.", missingPhrase(cat, skipped)))
		return nil, &NoValidRowsError{Skipped: skipped}
	}

	if len(invalid) > 0 {
		ce := &CoercionError{Entity: cat.Entity, Cells: invalid}
		log.Warn("import rejected", "invalid_cells", len(invalid), "error", ce)
		e.notifier.Error(ce.Message())
		return nil, ce
	}

	if err := e.sink.Insert(ctx, cat.Entity, records); err != nil {
		log.Error("bulk insert failed", "rows", len(records), "error", err)
		e.notifier.Error(err.Error())
		return nil, &InsertError{Entity: cat.Entity, Rows: len(records), Err: err}
	}

	outcome := &ImportOutcome{
		Entity:   cat.Entity,
		Inserted: len(records),
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	log.Info("import complete",
		"inserted", outcome.Inserted,
		"skipped", len(outcome.Skipped),
		"duration", outcome.Duration,
	)
	e.notifier.Info(Summary(cat, outcome))

	return outcome, nil
}

// Transform builds a record for every row that has all required values and
// a SkippedRow for every other row, both in row order. Cells of kept rows
// that fail to coerce are returned as invalid; their field is left absent
// in the record.
//
// When two headers map to the same field, the first one in header order
// with a present value wins. A value that fails to coerce is not present.
func Transform(table *SourceTable, cat *Catalog, mapping ColumnMapping) ([]DestinationRecord, []SkippedRow, []InvalidCell) {
	type binding struct {
		header string
		field  FieldDescriptor
	}

	var bindings []binding
	for _, h := range table.Headers {
		name := mapping[h]
		if name == "" || name == Skip {
			continue
		}
		if f, ok := cat.Field(name); ok {
			bindings = append(bindings, binding{header: h, field: f})
		}
	}

	build := cat.Build
	if build == nil {
		build = func(v FieldValues) DestinationRecord {
			return GenericRecord{EntityType: cat.Entity, Fields: v}
		}
	}
	required := cat.Required()

	var (
		records []DestinationRecord
		skipped []SkippedRow
		invalid []InvalidCell
	)

	for _, row := range table.Rows {
		values := make(FieldValues, len(bindings))
		var bad []InvalidCell
		for _, b := range bindings {
			if _, done := values[b.field.Name]; done {
				continue
			}
			raw := row.Values[b.header]
			if strings.TrimSpace(raw) == "" {
				continue
			}
			v, err := Coerce(b.field, raw)
			if err != nil {
				bad = append(bad, InvalidCell{Line: row.Line, Field: b.field, Value: raw})
				continue
			}
			if v != nil {
				values[b.field.Name] = v
			}
		}

		if missing := firstMissing(required, values); missing != "" {
			skipped = append(skipped, SkippedRow{
				Line:   row.Line,
				Reason: "missing required field " + missing,
			})
			continue
		}

		// A later header may have supplied the field after all.
		for _, c := range bad {
			if _, ok := values[c.Field.Name]; !ok {
				invalid = append(invalid, c)
			}
		}
		records = append(records, build(values))
	}

	return records, skipped, invalid
}

func firstMissing(required []FieldDescriptor, values FieldValues) string {
	for _, f := range required {
		if _, ok := values[f.Name]; !ok {
			return f.Name
		}
	}
	return ""
}

// Summary renders the success notice for an outcome.
//
//	"12 runs imported successfully. 2 rows skipped (missing Service ID) at rows: 4, 9"
func Summary(cat *Catalog, outcome *ImportOutcome) string {
	msg := fmt.Sprintf("%d %s imported successfully", outcome.Inserted, cat.Entity)
	if len(outcome.Skipped) == 0 {
		return msg
	}

	lines := make([]string, len(outcome.Skipped))
	for i, s := range outcome.Skipped {
		lines[i] = strconv.Itoa(s.Line)
	}

	return fmt.Sprintf("%s. %d rows skipped (missing %s) at rows: %s",
		msg, len(outcome.Skipped), missingPhrase(cat, outcome.Skipped), strings.Join(lines, ", "))
}

// missingPhrase names the missing field by label when every skipped row
// lacks the same one.
func missingPhrase(cat *Catalog, skipped []SkippedRow) string {
	if len(skipped) == 0 {
		return "required fields"
	}
	first := skipped[0].Reason
	for _, s := range skipped[1:] {
		if s.Reason != first {
			return "required fields"
		}
	}
	name := strings.TrimPrefix(first, "missing required field ")
	if f, ok := cat.Field(name); ok && f.Label != "" {
		return f.Label
	}
	return name
}
