package web

import (
	"net/http"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Sessions int                      `json:"sessions"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "unchecked",
		Sessions: s.service.ActiveSessions(),
		Imports:  s.service.LimiterStatus(),
	}

	status := http.StatusOK
	if s.db != nil {
		ctx, cancel := probeContext(r)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, status, resp)
}
