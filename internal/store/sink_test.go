package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/hygieneops/internal/core"
	_ "github.com/JonMunkholm/hygieneops/internal/core/catalogs"
)

type fakeTx struct {
	table      pgx.Identifier
	columns    []string
	rows       [][]any
	copyErr    error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.table = table
	f.columns = columns
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, vals)
	}
	return int64(len(f.rows)), src.Err()
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

func storeWithTx(tx *fakeTx, beginErr error) *Store {
	return &Store{
		begin: func(ctx context.Context) (copyTx, error) {
			if beginErr != nil {
				return nil, beginErr
			}
			return tx, nil
		},
	}
}

func text(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

func TestInsert_CopiesUnionOfColumns(t *testing.T) {
	tx := &fakeTx{}
	s := storeWithTx(tx, nil)

	records := []core.DestinationRecord{
		core.RunRecord{ServiceID: text("1001"), Clients: text("Acme")},
		core.RunRecord{ServiceID: text("1002"), Completed: pgtype.Bool{Bool: true, Valid: true}},
	}

	err := s.Insert(context.Background(), core.EntityRuns, records)
	require.NoError(t, err)

	assert.Equal(t, pgx.Identifier{"runs"}, tx.table)
	assert.Equal(t, []string{"service_id", "clients", "completed"}, tx.columns)
	require.Len(t, tx.rows, 2)
	assert.Equal(t, []any{text("1001"), text("Acme"), nil}, tx.rows[0])
	assert.Equal(t, []any{text("1002"), nil, pgtype.Bool{Bool: true, Valid: true}}, tx.rows[1])
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestInsert_FailureRollsBackVerbatim(t *testing.T) {
	backend := errors.New(`ERROR: duplicate key value violates unique constraint "customers_service_id_key" (SQLSTATE 23505)`)
	tx := &fakeTx{copyErr: backend}
	s := storeWithTx(tx, nil)

	err := s.Insert(context.Background(), core.EntityCustomers, []core.DestinationRecord{
		core.CustomerRecord{ServiceID: text("1"), SiteName: text("A")},
	})

	assert.Same(t, backend, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestInsert_BeginFailure(t *testing.T) {
	boom := errors.New("connection refused")
	s := storeWithTx(nil, boom)

	err := s.Insert(context.Background(), core.EntityRuns, []core.DestinationRecord{
		core.RunRecord{ServiceID: text("1")},
	})
	assert.ErrorIs(t, err, boom)
}

func TestInsert_EmptyBatchIsNoop(t *testing.T) {
	s := storeWithTx(nil, errors.New("must not begin"))
	assert.NoError(t, s.Insert(context.Background(), core.EntityRuns, nil))
}

func TestCopyRows_UnknownColumnsSorted(t *testing.T) {
	records := []core.DestinationRecord{
		core.GenericRecord{EntityType: "misc", Fields: core.FieldValues{"zeta": text("z"), "alpha": text("a")}},
		core.GenericRecord{EntityType: "misc", Fields: core.FieldValues{"known": text("k")}},
	}

	columns, rows := copyRows(records, []string{"known"})

	assert.Equal(t, []string{"known", "alpha", "zeta"}, columns)
	assert.Equal(t, []any{nil, text("a"), text("z")}, rows[0])
	assert.Equal(t, []any{text("k"), nil, nil}, rows[1])
}

func TestDestination(t *testing.T) {
	table, order := destination(core.EntityCustomers)
	assert.Equal(t, "customers", table)
	assert.Equal(t, "service_id", order[0])
	assert.Len(t, order, 19)

	table, order = destination("unregistered")
	assert.Equal(t, "unregistered", table)
	assert.Nil(t, order)
}
