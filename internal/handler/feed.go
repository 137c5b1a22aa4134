package handler

import (
	"net/http"
	"time"

	"madmetro/internal/realtime"
)

// VehiclePositions serves the poller's latest vehicles as a GTFS-realtime feed.
func (h *Handler) VehiclePositions(w http.ResponseWriter, r *http.Request) {
	data, err := realtime.MarshalVehicleFeed(h.rt.All(), time.Now())
	if err != nil {
		h.logger.Error("building vehicle feed", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.Write(data)
}
