package handler

import (
	"net/http"
)

// RouteList serves every known route.
func (h *Handler) RouteList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ww.Routes())
}

// RouteDetail serves a single route.
func (h *Handler) RouteDetail(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	route, ok := h.ww.Route(routeID)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown route " + routeID})
		return
	}
	h.writeJSON(w, http.StatusOK, route)
}

// RoutePath serves the points of a route's drawn path.
func (h *Handler) RoutePath(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	points, err := h.ww.RoutePath(r.Context(), routeID)
	if err != nil {
		h.writeRouteError(w, routeID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, points)
}

// RouteCurrent serves the current stop predictions and vehicles of a route.
func (h *Handler) RouteCurrent(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	data, err := h.ww.RouteCurrentData(r.Context(), routeID)
	if err != nil {
		h.writeRouteError(w, routeID, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, data)
}

// RouteStops serves the stops of a route.
func (h *Handler) RouteStops(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	stops, err := h.ww.RouteStops(r.Context(), routeID)
	if err != nil {
		h.writeRouteError(w, routeID, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stops)
}
