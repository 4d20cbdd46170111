package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status comes from statusFor and the message from core.MapError
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON or, for HTMX, as an HTML fragment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/hygieneops/internal/core"
	"github.com/JonMunkholm/hygieneops/internal/logging"
	"github.com/JonMunkholm/hygieneops/internal/web/templates"
)

var (
	errNoFile      = errors.New("no file provided")
	errFileTooBig  = errors.New("file too large")
	errBadRequest  = errors.New("invalid request body")
	errRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if errors.Is(err, core.ErrTooManyImports) {
		w.Header().Set("Retry-After", "15")
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, status)
		return
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	// Insert failures carry the database text unchanged; rejected cells
	// are listed with their values.
	var ie *core.InsertError
	var ce *core.CoercionError
	switch {
	case errors.As(err, &ie):
		resp.Detail = ie.Message()
	case errors.As(err, &ce):
		resp.Detail = ce.Message()
	}
	writeJSON(w, status, resp)
}

// respondErrorJSON writes a JSON error without logging.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	var (
		pe *core.ParseError
		ve *core.ValidationError
		nv *core.NoValidRowsError
		ce *core.CoercionError
		ie *core.InsertError
		te *core.TransitionError
		pg *pgconn.PgError
	)

	switch {
	case errors.Is(err, errFileTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile), errors.Is(err, errBadRequest), errors.As(err, &pe):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, core.ErrUnknownEntity), errors.Is(err, core.ErrNoReports):
		return http.StatusNotFound
	case errors.As(err, &ve), errors.As(err, &nv), errors.As(err, &ce):
		return http.StatusUnprocessableEntity
	case errors.As(err, &te):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &pg) && strings.HasPrefix(pg.Code, "23"):
		// Integrity constraint violation: the data conflicts with existing rows.
		return http.StatusConflict
	case errors.As(err, &ie):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
