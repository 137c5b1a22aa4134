package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SSECurrent streams a route's current data via Server-Sent Events, one
// "current" event per refresh.
func (h *Handler) SSECurrent(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("id")
	ctx := r.Context()

	if _, ok := h.ww.Route(routeID); !ok {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown route " + routeID})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send initial data immediately
	h.sendCurrentEvent(ctx, w, flusher, routeID)

	ticker := time.NewTicker(h.cfg.SSEInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sendCurrentEvent(ctx, w, flusher, routeID)
		case <-ctx.Done():
			return
		}
	}
}

// sendCurrentEvent fetches the route's data and writes it as one SSE event.
func (h *Handler) sendCurrentEvent(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, routeID string) {
	data, err := h.ww.RouteCurrentData(ctx, routeID)
	if err != nil {
		h.logger.Error("fetching SSE current data", "route", routeID, "error", err)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error("encoding SSE current data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: current\n")
	fmt.Fprintf(w, "data: %s\n\n", bytes.TrimRight(buf.Bytes(), "\n"))
	flusher.Flush()
}
