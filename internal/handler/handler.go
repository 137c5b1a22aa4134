package handler

import (
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"

	"madmetro/internal/config"
	"madmetro/internal/realtime"
	"madmetro/internal/templates"
	"madmetro/internal/webwatch"
	"madmetro/web"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	ww      *webwatch.Client
	rt      *realtime.Store
	cfg     *config.Config
	logger  *slog.Logger
	version string // content hash of static assets, for cache busting
}

// New creates a Handler.
func New(ww *webwatch.Client, rt *realtime.Store, cfg *config.Config, logger *slog.Logger) *Handler {
	v := computeAssetVersion(web.StaticFiles)
	logger.Info("asset version computed", "version", v)
	return &Handler{ww: ww, rt: rt, cfg: cfg, logger: logger, version: v}
}

// computeAssetVersion hashes every CSS and JS file in the embedded static
// tree into a short version string.
func computeAssetVersion(fsys fs.FS) string {
	h := md5.New()
	var paths []string
	fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := path.Ext(p); ext == ".css" || ext == ".js" {
			paths = append(paths, p)
		}
		return nil
	})
	sort.Strings(paths) // deterministic order
	for _, p := range paths {
		f, err := fsys.Open(p)
		if err != nil {
			continue
		}
		io.Copy(h, f)
		f.Close()
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

// page creates a templates.Page with the asset version pre-filled.
func (h *Handler) page(title string) templates.Page {
	return templates.Page{Title: title, AssetVersion: h.version}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding JSON response", "error", err)
	}
}

// writeRouteError answers a failed route lookup. Unknown routes are 404s.
func (h *Handler) writeRouteError(w http.ResponseWriter, routeID string, err error) {
	if errors.Is(err, webwatch.ErrInvalidRoute) {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown route " + routeID})
		return
	}
	h.logger.Error("route request", "route", routeID, "error", err)
	h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
