// Package docs proxies the documentation endpoints, which are the only
// routes that return raw HTML instead of the JSON envelope.
package docs

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/upstream"
	"github.com/fleetora/admin-gateway/pkg/logger"
)

type Handler struct {
	upstream *upstream.Client
	logger   *slog.Logger
}

func NewHandler(client *upstream.Client) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{upstream: client, logger: lg}
}

// Tree renders the documentation navigation tree.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, "/admin/docs/tree")
}

// Content renders one documentation page.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	h.passthrough(w, r, "/admin/docs/content")
}

// passthrough returns the upstream body verbatim as text/html. Failures
// degrade to a plain-text status line rather than the JSON envelope.
func (h *Handler) passthrough(w http.ResponseWriter, r *http.Request, path string) {
	status, body, err := h.upstream.ForwardRaw(r.Context(), upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   path,
		Query:  r.URL.Query(),
		Token:  internal.TokenFromContext(r.Context()),
	})
	if err != nil {
		h.logger.Error("documentation fetch failed", "path", path, "error", err)
		h.statusLine(w, http.StatusInternalServerError)
		return
	}

	if status < 200 || status >= 300 {
		h.statusLine(w, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write documentation body", "error", err)
	}
}

func (h *Handler) statusLine(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%d %s\n", status, http.StatusText(status))
}
