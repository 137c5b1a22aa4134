package handler

import (
	"net/http"

	"madmetro/internal/templates"
)

// Home serves the route index. Any other unmatched path is a 404.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := templates.RouteIndexData{Page: h.page("Madison Metro")}
	for _, route := range h.ww.Routes() {
		if route.Active {
			data.Routes = append(data.Routes, templates.RouteLink{ID: route.ID, Name: route.Name})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RouteIndexPage(data).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering route index", "error", err)
	}
}
