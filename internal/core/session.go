package core

// session.go is the import dialog as an explicit state machine:
//
//	Idle → FileSelected → Parsed → Mapped → Importing → Succeeded | Failed
//
// Selecting a new file restarts from FileSelected and Close returns to Idle.
// Importing is entered only from a Mapped state whose validation is ready.
// A failed import that the user can fix (mapping, data, busy database)
// returns to Mapped; anything else ends in Failed.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState is the position of a session in the import flow.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateFileSelected SessionState = "file_selected"
	StateParsed       SessionState = "parsed"
	StateMapped       SessionState = "mapped"
	StateImporting    SessionState = "importing"
	StateSucceeded    SessionState = "succeeded"
	StateFailed       SessionState = "failed"
)

// Notice is a message shown to the user during an import.
type Notice struct {
	Level   string    `json:"level"` // "info" or "error"
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID         string         `json:"id"`
	Entity     EntityType     `json:"entity"`
	State      SessionState   `json:"state"`
	FileName   string         `json:"fileName,omitempty"`
	Format     string         `json:"format,omitempty"`
	Headers    []string       `json:"headers,omitempty"`
	RowCount   int            `json:"rowCount"`
	Mapping    ColumnMapping  `json:"mapping,omitempty"`
	Validation *Validation    `json:"validation,omitempty"`
	Method     SuggestMethod  `json:"method,omitempty"`
	Notices    []Notice       `json:"notices"`
	Outcome    *ImportOutcome `json:"outcome,omitempty"`
	Error      string         `json:"error,omitempty"`
	Hint       string         `json:"hint,omitempty"` // Coded user message for Error
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Session holds the state of one import for one entity.
// All methods are safe for concurrent use.
type Session struct {
	ID  uuid.UUID
	cat *Catalog

	suggester *Suggester
	sink      DataSink
	logger    *slog.Logger

	mu        sync.Mutex
	gen       uint64 // bumped on every reset; stale async results are dropped
	state     SessionState
	fileName  string
	format    Format
	data      []byte
	table     *SourceTable
	editor    *Editor
	method    SuggestMethod
	notices   []Notice
	outcome   *ImportOutcome
	lastErr   error
	updatedAt time.Time
}

// NewSession creates an idle session for cat.
func NewSession(cat *Catalog, suggester *Suggester, sink DataSink, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &Session{
		ID:        id,
		cat:       cat,
		suggester: suggester,
		sink:      sink,
		logger:    logger.With("import_id", id.String(), "entity", cat.Entity),
		state:     StateIdle,
		updatedAt: time.Now(),
	}
}

// Catalog returns the session's catalog.
func (s *Session) Catalog() *Catalog {
	return s.cat
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdatedAt returns the time of the last state change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SelectFile discards any previous file and stages a new one.
// An unsupported extension returns a *ParseError and leaves the session Idle.
func (s *Session) SelectFile(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateImporting {
		return &TransitionError{From: s.state, Op: "select a file"}
	}

	s.resetLocked()

	format, err := DetectFormat(name)
	if err != nil {
		s.lastErr = err
		s.noticeLocked("error", err.Error())
		return err
	}

	s.fileName = name
	s.format = format
	s.data = data
	s.setStateLocked(StateFileSelected)
	return nil
}

// Parse decodes the staged file. On failure the session returns to Idle.
func (s *Session) Parse() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFileSelected {
		return &TransitionError{From: s.state, Op: "parse"}
	}

	table, err := ReadTable(s.fileName, s.format, s.data)
	if err != nil {
		s.logger.Warn("parse failed", "file", s.fileName, "error", err)
		s.resetLocked()
		s.lastErr = err
		s.noticeLocked("error", err.Error())
		return err
	}

	s.data = nil
	s.table = table
	s.logger.Info("file parsed", "file", s.fileName, "headers", len(table.Headers), "rows", len(table.Rows))
	s.setStateLocked(StateParsed)
	return nil
}

// Suggest computes the initial mapping and enters Mapped. It does not fail
// when the semantic mapper does; the fallback is recorded as a notice.
func (s *Session) Suggest(ctx context.Context) (Validation, error) {
	s.mu.Lock()
	if s.state != StateParsed {
		err := &TransitionError{From: s.state, Op: "suggest a mapping"}
		s.mu.Unlock()
		return Validation{}, err
	}
	gen := s.gen
	headers := s.table.Headers
	s.mu.Unlock()

	sug := s.suggester.Suggest(ctx, headers, s.cat)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.state != StateParsed {
		return Validation{}, &TransitionError{From: s.state, Op: "apply a suggestion"}
	}

	if sug.Notice != nil {
		s.logger.Warn("semantic mapping unavailable, using heuristic", "error", sug.Notice)
		s.noticeLocked("info", "Automatic column matching is unavailable; columns were matched by name.")
	}

	s.editor = NewEditor(s.cat, headers, sug.Mapping)
	s.method = sug.Method

	v := s.editor.Validate()
	if v.Ready() && sug.Method == MethodSemantic {
		s.noticeLocked("info", "Auto-mapping successful - all required fields mapped")
	}
	s.setStateLocked(StateMapped)
	return v, nil
}

// SetMapping changes one header's target and returns the new validation.
func (s *Session) SetMapping(header, fieldOrSkip string) (Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateMapped {
		return Validation{}, &TransitionError{From: s.state, Op: "change the mapping"}
	}

	v := s.editor.Set(header, fieldOrSkip)
	s.updatedAt = time.Now()
	return v, nil
}

// Validate returns the current validation. Only meaningful in Mapped.
func (s *Session) Validate() (Validation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		return Validation{}, &TransitionError{From: s.state, Op: "validate"}
	}
	return s.editor.Validate(), nil
}

// Import runs the executor over the parsed table with the current mapping.
func (s *Session) Import(ctx context.Context) (*ImportOutcome, error) {
	s.mu.Lock()
	if s.state != StateMapped {
		err := &TransitionError{From: s.state, Op: "import"}
		s.mu.Unlock()
		return nil, err
	}
	if err := s.editor.Validate().Err(); err != nil {
		s.lastErr = err
		s.mu.Unlock()
		return nil, err
	}

	gen := s.gen
	table := s.table
	mapping := s.editor.Mapping()
	s.lastErr = nil
	s.setStateLocked(StateImporting)
	s.mu.Unlock()

	outcome, err := NewExecutor(s.sink, sessionNotifier{s: s, gen: gen}).Execute(ctx, table, s.cat, mapping)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// Closed or restarted while the insert ran; the result is abandoned.
		return outcome, err
	}

	switch {
	case err == nil:
		s.outcome = outcome
		s.setStateLocked(StateSucceeded)
	case IsRecoverable(err):
		s.lastErr = err
		s.setStateLocked(StateMapped)
	default:
		s.lastErr = err
		s.setStateLocked(StateFailed)
	}

	return outcome, err
}

// Close drops every piece of state and returns to Idle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// View returns a snapshot for rendering.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		ID:        s.ID.String(),
		Entity:    s.cat.Entity,
		State:     s.state,
		FileName:  s.fileName,
		Method:    s.method,
		Notices:   append([]Notice(nil), s.notices...),
		Outcome:   s.outcome,
		UpdatedAt: s.updatedAt,
	}
	if s.fileName != "" {
		v.Format = s.format.String()
	}
	if s.table != nil {
		v.Headers = append([]string(nil), s.table.Headers...)
		v.RowCount = len(s.table.Rows)
	}
	if s.editor != nil {
		v.Mapping = s.editor.Mapping()
		val := s.editor.Validate()
		v.Validation = &val
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
		if IsUserFacing(s.lastErr) {
			v.Hint = FormatUserError(s.lastErr)
		}
	}
	if v.Notices == nil {
		v.Notices = []Notice{}
	}
	return v
}

// LastError returns the error of the most recent failed step, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) resetLocked() {
	s.gen++
	s.fileName = ""
	s.format = 0
	s.data = nil
	s.table = nil
	s.editor = nil
	s.method = ""
	s.notices = nil
	s.outcome = nil
	s.lastErr = nil
	s.setStateLocked(StateIdle)
}

func (s *Session) setStateLocked(state SessionState) {
	if s.state != state {
		s.logger.Debug("import state", "from", s.state, "to", state)
	}
	s.state = state
	s.updatedAt = time.Now()
}

func (s *Session) noticeLocked(level, msg string) {
	s.notices = append(s.notices, Notice{Level: level, Message: msg, At: time.Now()})
}

// sessionNotifier records executor messages on the session that started
// the import, unless it has been reset since.
type sessionNotifier struct {
	s   *Session
	gen uint64
}

func (n sessionNotifier) Info(msg string)  { n.add("info", msg) }
func (n sessionNotifier) Error(msg string) { n.add("error", msg) }

func (n sessionNotifier) add(level, msg string) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if n.s.gen == n.gen {
		n.s.noticeLocked(level, msg)
	}
}
