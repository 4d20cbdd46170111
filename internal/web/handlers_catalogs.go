package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

// catalogResponse is the JSON form of a catalog.
type catalogResponse struct {
	Entity  core.EntityType        `json:"entity"`
	Label   string                 `json:"label"`
	Version int                    `json:"version"`
	Fields  []core.FieldDescriptor `json:"fields"`
	Ignored []string               `json:"ignored"`
}

func toCatalogResponse(c *core.Catalog) catalogResponse {
	return catalogResponse{
		Entity:  c.Entity,
		Label:   c.Label,
		Version: c.Version,
		Fields:  c.Fields,
		Ignored: c.Ignored,
	}
}

func (s *Server) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	cats := s.service.ListCatalogs()
	out := make([]catalogResponse, len(cats))
	for i, c := range cats {
		out[i] = toCatalogResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.service.Catalog(chi.URLParam(r, "entity"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCatalogResponse(cat))
}
