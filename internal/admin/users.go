package admin

import (
	"fmt"
	"net/http"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.proxyList(w, r, "/admin/users")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodGet, fmt.Sprintf("/admin/users/%d", id))
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, http.MethodPost, "/admin/users")
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPatch, fmt.Sprintf("/admin/users/%d", id))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id))
}
