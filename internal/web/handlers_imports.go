package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/hygieneops/internal/core"
	"github.com/JonMunkholm/hygieneops/internal/web/templates"
)

// mappingRequest is the body of a mapping change.
type mappingRequest struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

// mappingResponse is returned after a mapping change.
type mappingResponse struct {
	Mapping    core.ColumnMapping `json:"mapping"`
	Validation core.Validation    `json:"validation"`
}

// runResponse is returned after an import attempt.
type runResponse struct {
	Outcome *core.ImportOutcome `json:"outcome"`
	Message string              `json:"message"`
	Session core.SessionView    `json:"session"`
}

// handleStartImport reads an uploaded file, parses it and suggests a mapping.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	data, fileName, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.service.StartImport(r.Context(), entity, fileName, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondSession(w, r, http.StatusCreated, sess.View())
}

// readUpload returns the bytes and name of the multipart "file" field,
// bounded by the configured maximum size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return nil, "", errFileTooBig
		}
		return nil, "", errNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondSession(w, r, http.StatusOK, sess.View())
}

func (s *Server) handleSetMapping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Header == "" {
		s.respondError(w, r, errBadRequest)
		return
	}
	if req.Field == "" {
		req.Field = core.Skip
	}

	v, err := s.service.SetMapping(id, req.Header, req.Field)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = templates.ValidationSummary(v).Render(r.Context(), w)
		return
	}

	sess, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappingResponse{Mapping: sess.View().Mapping, Validation: v})
}

func (s *Server) handleRunImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	outcome, err := s.service.RunImport(importContext(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.service.Session(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	view := sess.View()

	if isHTMX(r) {
		s.respondSession(w, r, http.StatusOK, view)
		return
	}
	writeJSON(w, http.StatusOK, runResponse{
		Outcome: outcome,
		Message: core.Summary(sess.Catalog(), outcome),
		Session: view,
	})
}

func (s *Server) handleCloseImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseImport(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondSession writes a session view as JSON or an HTML panel.
func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, view core.SessionView) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.SessionPanel(view).Render(r.Context(), w)
		return
	}
	writeJSON(w, status, view)
}
