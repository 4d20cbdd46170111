package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func runsCatalog() *Catalog {
	return &Catalog{
		Entity:  EntityRuns,
		Label:   "Runs",
		Version: 1,
		Table:   "runs",
		Fields: []FieldDescriptor{
			{Name: "service_id", Label: "Service ID", Required: true, Type: FieldText},
			{Name: "clients", Label: "Clients", Type: FieldText},
			{Name: "suburb", Label: "Suburb", Type: FieldText},
			{Name: "weeks", Label: "Weeks", Type: FieldText},
			{Name: "completed", Label: "Completed", Type: FieldBool},
		},
		Ignored: []string{"ysnPrint", "RunTag"},
		Build:   BuildRunRecord,
	}
}

func customersCatalog() *Catalog {
	return &Catalog{
		Entity:  EntityCustomers,
		Label:   "Customers",
		Version: 1,
		Table:   "customers",
		Fields: []FieldDescriptor{
			{Name: "service_id", Label: "Service ID", Required: true, Type: FieldText},
			{Name: "site_name", Label: "Site Name", Required: true, Type: FieldText},
			{Name: "site_suburb", Label: "Suburb", Type: FieldText},
			{Name: "delete_tag", Label: "Delete Tag", Type: FieldBool},
			{Name: "contract_date", Label: "Contract Date", Type: FieldDate},
		},
		Ignored: []string{"Save_tag", "SiteState"},
		Build:   BuildCustomerRecord,
	}
}

// registerTestCatalogs replaces the registry with the test catalogs for the
// duration of the test.
func registerTestCatalogs(t *testing.T) {
	t.Helper()
	ClearCatalogs()
	Register(*runsCatalog())
	Register(*customersCatalog())
	t.Cleanup(ClearCatalogs)
}

func mustTable(t *testing.T, csv string) *SourceTable {
	t.Helper()
	table, err := ReadTable("test.csv", FormatCSV, []byte(csv))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	return table
}

// fakeSink records inserted batches. If err is set every insert fails.
type fakeSink struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	batches [][]DestinationRecord
}

func (s *fakeSink) Insert(ctx context.Context, entity EntityType, records []DestinationRecord) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *fakeSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *fakeSink) last() []DestinationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

// fakeMapper returns a canned answer.
type fakeMapper struct {
	mapping map[string]string
	err     error
	got     MappingRequest
}

func (m *fakeMapper) SuggestMapping(ctx context.Context, req MappingRequest) (map[string]string, error) {
	m.got = req
	return m.mapping, m.err
}

var errBackend = errors.New(`duplicate key value violates unique constraint "runs_pkey"`)

// recordingNotifier captures executor notices.
type recordingNotifier struct {
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *recordingNotifier) Error(msg string) { n.errors = append(n.errors, msg) }
