package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"madmetro/internal/config"
	"madmetro/internal/handler"
	"madmetro/internal/realtime"
	"madmetro/internal/webwatch"
	"madmetro/web"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP server for madmetro.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
	ready  chan struct{} // closed once the poller has filled the store
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, ww *webwatch.Client, rt *realtime.Store, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	h := handler.New(ww, rt, cfg, logger)

	s := &Server{mux: mux, cfg: cfg, logger: logger, ready: make(chan struct{})}

	// Static files, served from the embedded FS
	staticFS, _ := fs.Sub(web.StaticFiles, "static")
	fileServer := http.FileServer(http.FS(staticFS))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticCacheHandler(fileServer)))

	// JSON API
	mux.HandleFunc("GET /api/routes", h.RouteList)
	mux.HandleFunc("GET /api/routes/{id}", h.RouteDetail)
	mux.HandleFunc("GET /api/routes/{id}/path", h.RoutePath)
	mux.HandleFunc("GET /api/routes/{id}/current", h.RouteCurrent)
	mux.HandleFunc("GET /api/routes/{id}/stops", h.RouteStops)

	// Pages
	mux.HandleFunc("GET /", h.Home)
	mux.HandleFunc("GET /routes/{id}", h.RouteBoard)

	// SSE
	mux.HandleFunc("GET /sse/routes/{id}", h.SSECurrent)

	// GTFS-realtime
	mux.HandleFunc("GET /gtfs-rt/vehicle-positions.pb", h.VehiclePositions)

	return s
}

// SetReady signals that the first poll has finished and the vehicle feed
// has data.
func (s *Server) SetReady() {
	select {
	case <-s.ready:
		// already closed
	default:
		close(s.ready)
	}
}

// Handler returns the server's routes wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger, s.ready)
}

// ListenAndServe starts the HTTP server and shuts it down gracefully when ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
