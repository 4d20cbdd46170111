package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/hygieneops/internal/core"
	"github.com/JonMunkholm/hygieneops/internal/logging"
)

// Insert writes records in one transaction with COPY. Either every record is
// written or none is; the driver error is returned unwrapped so its text
// reaches the user unchanged.
func (s *Store) Insert(ctx context.Context, entity core.EntityType, records []core.DestinationRecord) error {
	if len(records) == 0 {
		return nil
	}

	table, order := destination(entity)
	columns, rows := copyRows(records, order)

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copied %d of %d rows", n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logging.WithFields(ctx, "entity", entity, "table", table).Info("rows copied", "rows", n, "columns", len(columns))
	return nil
}

// destination resolves the table and column order for an entity from its
// catalog, falling back to the entity name.
func destination(entity core.EntityType) (string, []string) {
	if cat, ok := core.Lookup(entity); ok {
		return cat.Table, cat.FieldNames()
	}
	return string(entity), nil
}

// copyRows returns the columns present in at least one record and a row per
// record with nil for the columns that record lacks. Columns follow order;
// any not listed there are appended sorted.
func copyRows(records []core.DestinationRecord, order []string) ([]string, [][]any) {
	values := make([]map[string]any, len(records))
	present := make(map[string]bool)
	for i, r := range records {
		values[i] = r.Values()
		for col := range values[i] {
			present[col] = true
		}
	}

	columns := make([]string, 0, len(present))
	listed := make(map[string]bool, len(order))
	for _, col := range order {
		listed[col] = true
		if present[col] {
			columns = append(columns, col)
		}
	}
	var extra []string
	for col := range present {
		if !listed[col] {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	columns = append(columns, extra...)

	rows := make([][]any, len(records))
	for i, v := range values {
		row := make([]any, len(columns))
		for c, col := range columns {
			row[c] = v[col]
		}
		rows[i] = row
	}
	return columns, rows
}
