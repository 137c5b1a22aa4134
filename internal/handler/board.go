package handler

import (
	"net/http"
	"strings"

	"madmetro/internal/templates"
	"madmetro/internal/webwatch"
)

// RouteBoard serves an HTML arrival board for a route.
func (h *Handler) RouteBoard(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	route, ok := h.ww.Route(routeID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	current, err := h.ww.RouteCurrentData(r.Context(), routeID)
	if err != nil {
		h.logger.Error("fetching route board", "route", routeID, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	data := templates.RouteBoardData{
		Page:      h.page(route.Name),
		RouteName: route.Name,
		Vehicles:  vehicleRows(current.Vehicles),
		Stops:     stopRows(current.StopTimes),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RouteBoardPage(data).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering route board", "error", err)
	}
}

func vehicleRows(vehicles []webwatch.VehicleLocation) []templates.VehicleRow {
	rows := make([]templates.VehicleRow, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, templates.VehicleRow{
			Number:    v.Number,
			Heading:   v.Direction.String(),
			NextStop:  v.NextStop,
			FinalStop: v.FinalStop,
		})
	}
	return rows
}

func stopRows(stopTimes []webwatch.RouteStopTime) []templates.StopRow {
	rows := make([]templates.StopRow, 0, len(stopTimes))
	for _, st := range stopTimes {
		rows = append(rows, templates.StopRow{
			StopID:   st.StopID,
			Arrivals: strings.Join(st.Times, ", "),
		})
	}
	return rows
}
