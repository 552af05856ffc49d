package admin

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "userID")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodGet, fmt.Sprintf("/admin/balance/%d", id))
}

// Deposit validates the payload locally before any upstream call, then
// forwards the original body verbatim.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	body, err := h.ReadBody(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var dto DepositDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	env := h.upstream.Forward(r.Context(), upstream.ForwardRequest{
		Method: http.MethodPost,
		Path:   "/admin/balance/deposit",
		Body:   body,
		Token:  internal.TokenFromContext(r.Context()),
	})
	h.WriteEnvelope(w, env)
}
