// Package admin hosts the back-office proxy routes. Every handler here is
// a thin pass-through: minimal local validation, one forwarded upstream
// call, normalized envelope out.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/transport"
	"github.com/fleetora/admin-gateway/internal/upstream"
	"github.com/fleetora/admin-gateway/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	upstream *upstream.Client
	audit    *AuditService
}

func NewHandler(client *upstream.Client) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		upstream:    client,
		audit:       NewAuditService(client, lg),
	}
}

// proxy forwards the inbound request to the given upstream path using the
// guard-resolved token and writes the normalized envelope.
func (h *Handler) proxy(w http.ResponseWriter, r *http.Request, method, path string) {
	body, err := h.ReadBody(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	env := h.upstream.Forward(r.Context(), upstream.ForwardRequest{
		Method: method,
		Path:   path,
		Query:  r.URL.Query(),
		Body:   body,
		Token:  internal.TokenFromContext(r.Context()),
	})
	h.WriteEnvelope(w, env)
}

// proxyList is proxy for list endpoints, normalizing whichever list shape
// the upstream returns.
func (h *Handler) proxyList(w http.ResponseWriter, r *http.Request, path string) {
	env := h.upstream.ForwardList(r.Context(), upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   path,
		Query:  r.URL.Query(),
		Token:  internal.TokenFromContext(r.Context()),
	})
	h.WriteEnvelope(w, env)
}

// numericID parses a numeric path parameter. Malformed IDs short-circuit
// with a client error before any upstream call.
func (h *Handler) numericID(r *http.Request, param string) (int64, *internal.AppError) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid "+param, internal.ErrCodeInvalidID)
	}
	return id, nil
}
