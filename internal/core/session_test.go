package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const runsCSV = "ServiceID,Clients,ysnPrint\n1001,Acme,1\n,Orphan,0\n1003,Gamma,1\n"

func newParsedSession(t *testing.T, mapper SemanticMapper, sink DataSink) *Session {
	t.Helper()
	s := NewSession(runsCatalog(), NewSuggester(mapper), sink, nil)
	if err := s.SelectFile("runs.csv", []byte(runsCSV)); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := s.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func TestSession_HappyPath(t *testing.T) {
	sink := &fakeSink{}
	s := newParsedSession(t, nil, sink)

	if s.State() != StateParsed {
		t.Fatalf("State = %s, want parsed", s.State())
	}

	v, err := s.Suggest(context.Background())
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if !v.Ready() {
		t.Fatalf("Suggest() validation not ready: %+v", v)
	}
	if s.State() != StateMapped {
		t.Fatalf("State = %s, want mapped", s.State())
	}

	view := s.View()
	if view.Mapping["ysnPrint"] != Skip {
		t.Errorf("ysnPrint -> %q, want skip", view.Mapping["ysnPrint"])
	}
	if view.RowCount != 3 {
		t.Errorf("RowCount = %d, want 3", view.RowCount)
	}

	outcome, err := s.Import(context.Background())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if outcome.Inserted != 2 || len(outcome.Skipped) != 1 || outcome.Skipped[0].Line != 3 {
		t.Errorf("outcome = %+v", outcome)
	}
	if s.State() != StateSucceeded {
		t.Errorf("State = %s, want succeeded", s.State())
	}

	notices := s.View().Notices
	last := notices[len(notices)-1]
	if last.Level != "info" || !strings.HasPrefix(last.Message, "2 runs imported successfully") {
		t.Errorf("last notice = %+v", last)
	}
}

func TestSession_SemanticSuccessNotice(t *testing.T) {
	mapper := &fakeMapper{mapping: map[string]string{"ServiceID": "service_id", "Clients": "clients", "ysnPrint": Skip}}
	s := newParsedSession(t, mapper, &fakeSink{})

	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	view := s.View()
	if view.Method != MethodSemantic {
		t.Errorf("Method = %q, want semantic", view.Method)
	}
	if len(view.Notices) != 1 || view.Notices[0].Message != "Auto-mapping successful - all required fields mapped" {
		t.Errorf("Notices = %+v", view.Notices)
	}
}

func TestSession_SemanticFailureNotice(t *testing.T) {
	mapper := &fakeMapper{err: errors.New("timeout")}
	s := newParsedSession(t, mapper, &fakeSink{})

	v, err := s.Suggest(context.Background())
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if !v.Ready() {
		t.Errorf("heuristic fallback should map ServiceID")
	}

	view := s.View()
	if view.Method != MethodHeuristic {
		t.Errorf("Method = %q, want heuristic", view.Method)
	}
	if len(view.Notices) != 1 || view.Notices[0].Level != "info" {
		t.Errorf("Notices = %+v, want one info notice", view.Notices)
	}
}

func TestSession_ParseFailureReturnsToIdle(t *testing.T) {
	s := NewSession(runsCatalog(), nil, &fakeSink{}, nil)

	if err := s.SelectFile("runs.csv", []byte("\n\n")); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	err := s.Parse()

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State = %s, want idle", s.State())
	}
	if s.LastError() == nil {
		t.Errorf("LastError() = nil")
	}
	if hint := s.View().Hint; !strings.Contains(hint, "FILE005") {
		t.Errorf("Hint = %q, want FILE005 message", hint)
	}
}

func TestSession_UnsupportedFile(t *testing.T) {
	s := NewSession(runsCatalog(), nil, &fakeSink{}, nil)

	err := s.SelectFile("runs.pdf", []byte("x"))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("SelectFile() error = %v, want *ParseError", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State = %s, want idle", s.State())
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := NewSession(runsCatalog(), nil, &fakeSink{}, nil)

	if err := s.Parse(); !IsTransitionError(err) {
		t.Errorf("Parse() from idle error = %v, want TransitionError", err)
	}
	if _, err := s.Suggest(context.Background()); !IsTransitionError(err) {
		t.Errorf("Suggest() from idle error = %v", err)
	}
	if _, err := s.SetMapping("a", "b"); !IsTransitionError(err) {
		t.Errorf("SetMapping() from idle error = %v", err)
	}
	if _, err := s.Import(context.Background()); !IsTransitionError(err) {
		t.Errorf("Import() from idle error = %v", err)
	}
	if _, err := s.Validate(); !IsTransitionError(err) {
		t.Errorf("Validate() from idle error = %v", err)
	}
}

func TestSession_ImportBlockedUntilValid(t *testing.T) {
	sink := &fakeSink{}
	s := newParsedSession(t, nil, sink)
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatal(err)
	}

	v, err := s.SetMapping("ServiceID", Skip)
	if err != nil {
		t.Fatalf("SetMapping() error = %v", err)
	}
	if v.Ready() {
		t.Fatalf("Ready() = true after unmapping service_id")
	}

	_, err = s.Import(context.Background())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Import() error = %v, want *ValidationError", err)
	}
	if s.State() != StateMapped {
		t.Errorf("State = %s, want mapped", s.State())
	}
	if sink.calls() != 0 {
		t.Errorf("sink called for an invalid mapping")
	}

	if _, err := s.SetMapping("ServiceID", "service_id"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Import(context.Background()); err != nil {
		t.Errorf("Import() after fix error = %v", err)
	}
}

func TestSession_InsertFailureReturnsToMapped(t *testing.T) {
	sink := &fakeSink{err: errBackend}
	s := newParsedSession(t, nil, sink)
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := s.Import(context.Background())
	if !errors.Is(err, errBackend) {
		t.Fatalf("Import() error = %v, want backend error", err)
	}
	if s.State() != StateMapped {
		t.Errorf("State = %s, want mapped", s.State())
	}

	view := s.View()
	if view.Error == "" {
		t.Errorf("View().Error is empty")
	}
	last := view.Notices[len(view.Notices)-1]
	if last.Level != "error" || last.Message != errBackend.Error() {
		t.Errorf("last notice = %+v", last)
	}
}

func TestSession_ContextFailureEndsFailed(t *testing.T) {
	sink := &fakeSink{block: make(chan struct{})}
	s := newParsedSession(t, nil, sink)
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Import(ctx)
	if err == nil {
		t.Fatal("Import() error = nil, want deadline error")
	}
	// The sink error is wrapped as an insert failure, which the user can retry.
	if s.State() != StateMapped {
		t.Errorf("State = %s, want mapped", s.State())
	}
}

func TestSession_CloseDuringImportAbandonsResult(t *testing.T) {
	sink := &fakeSink{block: make(chan struct{})}
	s := newParsedSession(t, nil, sink)
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Import(context.Background())
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for s.State() != StateImporting {
		if time.Now().After(deadline) {
			t.Fatal("import never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.SelectFile("other.csv", []byte("x")); !IsTransitionError(err) {
		t.Errorf("SelectFile() during import error = %v, want TransitionError", err)
	}

	s.Close()
	close(sink.block)

	if err := <-done; err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State = %s, want idle after close", s.State())
	}
	if len(s.View().Notices) != 0 {
		t.Errorf("stale notices recorded: %+v", s.View().Notices)
	}
}

func TestSession_SelectFileResets(t *testing.T) {
	s := newParsedSession(t, nil, &fakeSink{})
	if _, err := s.Suggest(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.SelectFile("again.csv", []byte("A\n1\n")); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}

	view := s.View()
	if view.State != StateFileSelected {
		t.Errorf("State = %s, want file_selected", view.State)
	}
	if view.Mapping != nil || view.Headers != nil || view.Validation != nil {
		t.Errorf("previous file state leaked: %+v", view)
	}
	if view.FileName != "again.csv" || view.Format != "csv" {
		t.Errorf("file = %q (%q)", view.FileName, view.Format)
	}
}
