package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"madmetro/internal/config"
	"madmetro/internal/realtime"
	"madmetro/internal/webwatch"
)

type emptyFetcher struct{}

func (emptyFetcher) Fetch(context.Context, string, http.Header) (string, bool) {
	return "", false
}

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ww := webwatch.NewClient("http://ww.test", logger, webwatch.WithFetcher(emptyFetcher{}))
	return New(config.Load(), ww, realtime.NewStore(), logger)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer()
	s.SetReady()
	h := s.Handler()

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/routes", http.StatusOK, "application/json"},
		{"/api/routes/02", http.StatusOK, "application/json"},
		{"/api/routes/02/path", http.StatusOK, "application/json"},
		{"/api/routes/02/current", http.StatusOK, "application/json"},
		{"/api/routes/02/stops", http.StatusOK, "application/json"},
		{"/api/routes/zz/current", http.StatusNotFound, "application/json"},
		{"/routes/02", http.StatusOK, "text/html"},
		{"/gtfs-rt/vehicle-positions.pb", http.StatusOK, "application/x-protobuf"},
		{"/static/board.css", http.StatusOK, "text/css"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", ct, tt.contentType)
			}
		})
	}
}

func TestServer_SetReadyTwice(t *testing.T) {
	s := newTestServer()
	s.SetReady()
	s.SetReady()
}

func TestServer_VersionedStaticCached(t *testing.T) {
	h := newTestServer().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	body := rec.Body.String()
	i := strings.Index(body, "/static/board.css?v=")
	if i < 0 {
		t.Fatalf("index page should link a versioned stylesheet: %s", body)
	}
	href := body[i:]
	href = href[:strings.IndexByte(href, '"')]

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", href, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", href, rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", got)
	}
}
