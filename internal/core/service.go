package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/hygieneops/internal/logging"
)

// DefaultSessionTTL is how long an untouched import session is kept.
const DefaultSessionTTL = 30 * time.Minute

// DefaultImportTimeout bounds the executor run of one import.
const DefaultImportTimeout = 2 * time.Minute

// ReportSource lists service reports for export.
type ReportSource interface {
	ListReports(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

// ServiceOptions tunes a Service. Zero values use the defaults.
type ServiceOptions struct {
	SessionTTL    time.Duration
	ImportTimeout time.Duration
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service provides the import and export operations used by the web layer.
type Service struct {
	sink          DataSink
	reports       ReportSource
	suggester     *Suggester
	limiter       *ImportLimiter
	sessionTTL    time.Duration
	importTimeout time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewService creates a Service. mapper may be nil to run heuristic-only.
func NewService(sink DataSink, reports ReportSource, mapper SemanticMapper, opts ServiceOptions) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}

	return &Service{
		sink:          sink,
		reports:       reports,
		suggester:     NewSuggester(mapper),
		limiter:       NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		sessionTTL:    opts.SessionTTL,
		importTimeout: opts.ImportTimeout,
		sessions:      make(map[uuid.UUID]*Session),
	}
}

// ListCatalogs returns every registered catalog.
func (s *Service) ListCatalogs() []*Catalog {
	return Catalogs()
}

// Catalog returns the catalog for an entity name.
func (s *Service) Catalog(entity string) (*Catalog, error) {
	cat, ok := Lookup(EntityType(entity))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	return cat, nil
}

// StartImport opens a session, selects and parses the file, and computes the
// initial mapping. On a parse failure the session is discarded.
func (s *Service) StartImport(ctx context.Context, entity, fileName string, data []byte) (*Session, error) {
	cat, err := s.Catalog(entity)
	if err != nil {
		return nil, err
	}

	sess := NewSession(cat, s.suggester, s.sink, logging.FromContext(ctx))

	if err := sess.SelectFile(fileName, data); err != nil {
		return nil, err
	}
	if err := sess.Parse(); err != nil {
		return nil, err
	}
	if _, err := sess.Suggest(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logging.ForImport(ctx, sess.ID.String(), entity).Info("import session started", "file", fileName)
	return sess, nil
}

// Session returns a live session by id.
func (s *Service) Session(id string) (*Session, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[uid]
	s.mu.RUnlock()

	if !ok || s.expired(sess, time.Now()) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SetMapping changes one header of a session's mapping.
func (s *Service) SetMapping(id, header, field string) (Validation, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Validation{}, err
	}
	return sess.SetMapping(header, field)
}

// RunImport executes a session's import while holding an import slot.
// ErrTooManyImports leaves the session in Mapped for a retry.
func (s *Service) RunImport(ctx context.Context, id string) (*ImportOutcome, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	if st := sess.State(); st != StateMapped {
		return nil, &TransitionError{From: st, Op: "import"}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	return sess.Import(ctx)
}

// CloseImport resets a session and forgets it.
func (s *Service) CloseImport(id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	sess.Close()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	return nil
}

// ExportReports writes the filtered reports as CSV and returns how many
// rows were written. ErrNoReports is returned when nothing matches.
func (s *Service) ExportReports(ctx context.Context, filter ReportFilter, w io.Writer) (int, error) {
	if s.reports == nil {
		return 0, fmt.Errorf("export reports: no report source configured")
	}

	rows, err := s.reports.ListReports(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list reports: %w", err)
	}
	if len(rows) == 0 {
		return 0, ErrNoReports
	}

	if err := WriteReportsCSV(w, rows); err != nil {
		return 0, fmt.Errorf("write reports: %w", err)
	}
	return len(rows), nil
}

// SweepExpired removes sessions idle for longer than the TTL.
// Sessions that are importing are never removed.
func (s *Service) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			sess.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Service) expired(sess *Session, now time.Time) bool {
	return sess.State() != StateImporting && now.Sub(sess.UpdatedAt()) > s.sessionTTL
}

// ActiveSessions returns the number of tracked sessions.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// Drain waits for running imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	slog.Info("waiting for imports to finish", "active", s.limiter.ActiveCount())
	return s.limiter.WaitForDrain(ctx)
}
