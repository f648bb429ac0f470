package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// adminPasswordHeader carries the shared admin secret. The dashboard is
// a single-owner tool; there are no user accounts.
const adminPasswordHeader = "X-Admin-Password"

// requireAdmin gates a handler behind the admin password. Comparison is
// constant time so response timing leaks nothing about the secret.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(adminPasswordHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.adminPassword)) != 1 {
			slog.WarnContext(r.Context(), "Admin authentication failed",
				"client_ip", clientIP(r),
				"path", r.URL.Path)
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
