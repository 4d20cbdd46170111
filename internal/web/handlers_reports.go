package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

// handleExportReports streams the filtered service reports as a CSV download.
func (s *Server) handleExportReports(w http.ResponseWriter, r *http.Request) {
	filter := core.ReportFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		Technician: strings.TrimSpace(r.URL.Query().Get("technician")),
	}
	// "all" is the unfiltered choice of the technician picker.
	if strings.EqualFold(filter.Technician, "all") {
		filter.Technician = ""
	}

	var buf bytes.Buffer
	n, err := s.service.ExportReports(r.Context(), filter, &buf)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.ReportFileName(time.Now())))
	w.Header().Set("X-Report-Count", strconv.Itoa(n))
	_, _ = w.Write(buf.Bytes())
}
