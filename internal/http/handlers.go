package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleQRCode renders a PNG linking to the menu site, for table tents
// and stickers. An optional table parameter bakes the table number into
// the link; size picks the pixel dimensions.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			respondError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	target := s.siteURL
	if table := r.URL.Query().Get("table"); table != "" {
		target += "?table=" + url.QueryEscape(table)
	}

	png, err := qrcode.Encode(target, qrcode.Medium, size)
	if err != nil {
		slog.ErrorContext(r.Context(), "QR code generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}

// handleSeed populates an empty database with the starter menu.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Seed(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "Seed refused", "error", err)
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	s.invalidateMenuCaches()
	respondJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}
