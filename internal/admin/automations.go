package admin

import (
	"fmt"
	"net/http"
)

func (h *Handler) ListAutomations(w http.ResponseWriter, r *http.Request) {
	h.proxyList(w, r, "/admin/automations")
}

func (h *Handler) GetAutomation(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodGet, fmt.Sprintf("/admin/automations/%d", id))
}

func (h *Handler) CreateAutomation(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, http.MethodPost, "/admin/automations")
}

func (h *Handler) UpdateAutomation(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPatch, fmt.Sprintf("/admin/automations/%d", id))
}

func (h *Handler) DeleteAutomation(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodDelete, fmt.Sprintf("/admin/automations/%d", id))
}

// RunAutomation triggers a workflow run; the run result is the upstream's
// opaque payload.
func (h *Handler) RunAutomation(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPost, fmt.Sprintf("/admin/automations/%d/run", id))
}
