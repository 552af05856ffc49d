package token

import (
	"log/slog"
	"net/http"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/transport"
	"github.com/fleetora/admin-gateway/internal/upstream"
	"github.com/fleetora/admin-gateway/pkg/logger"
)

// Handler exposes the session endpoints. Login and logout are the only
// flows allowed to create or destroy the cookie pair besides the guard's
// refresh step.
type Handler struct {
	*transport.BaseHandler
	guard    *Guard
	upstream *upstream.Client
}

func NewHandler(guard *Guard, client *upstream.Client) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		guard:       guard,
		upstream:    client,
	}
}

// Login forwards the credential payload verbatim and, on success, turns
// the upstream's token response into the session cookie pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := h.ReadBody(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, respBody, err := h.upstream.ForwardRaw(r.Context(), upstream.ForwardRequest{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   body,
	})
	if err != nil {
		h.Logger.Error("login forward failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if status < 200 || status >= 300 {
		h.WriteEnvelope(w, upstream.Envelope{Status: status, Message: "invalid credentials"})
		return
	}

	pair, err := decodePair(respBody)
	if err != nil {
		h.Logger.Error("login returned unparseable token body", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.guard.SetSessionCookies(w, pair)
	h.WriteEnvelope(w, upstream.Envelope{Status: http.StatusOK, Data: respBody})
}

// Logout clears the cookie pair. The upstream is notified best-effort;
// its failure never blocks session destruction.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if accessToken, ok := h.guard.ReadAccessToken(r); ok {
		if _, _, err := h.upstream.ForwardRaw(r.Context(), upstream.ForwardRequest{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Token:  accessToken,
		}); err != nil {
			h.Logger.Warn("upstream logout failed", "error", err)
		}
	}

	h.guard.ClearSessionCookies(w)
	h.WriteEnvelope(w, upstream.Envelope{Status: http.StatusOK, Message: "logged out"})
}

// Me proxies the identity endpoint for the server-rendered shell that
// hydrates the client with an initial user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	env := h.upstream.Forward(r.Context(), upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  internal.TokenFromContext(r.Context()),
	})
	h.WriteEnvelope(w, env)
}
