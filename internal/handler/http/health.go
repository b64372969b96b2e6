// Package http provides the HTTP handlers and middleware of the review
// summarizer: the summarize endpoint, liveness endpoints, metrics collection,
// request logging and panic recovery.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"review-summarizer/internal/handler/http/respond"
)

// HealthResponse is the body of /health and /healthz.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// HealthHandler answers liveness probes. There are no dependencies to check;
// upstream availability is reported per request instead.
type HealthHandler struct{}

// ServeHTTP returns 200 {"ok":true}.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{OK: true})
}

// RootHandler serves a plain-text marker on "/".
type RootHandler struct {
	Version string
}

// ServeHTTP writes the marker.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	msg := "review-summarizer is running"
	if h.Version != "" {
		msg += " (" + h.Version + ")"
	}
	if _, err := w.Write([]byte(msg + "\n")); err != nil {
		slog.Default().Warn("root: failed to write response", slog.Any("error", err))
	}
}

// allowMethods answers 405 with an Allow header when r.Method is not listed.
func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
