package admin

import (
	"fmt"
	"net/http"
)

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	h.proxyList(w, r, "/admin/roles")
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, http.MethodPost, "/admin/roles")
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPatch, fmt.Sprintf("/admin/roles/%d", id))
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodDelete, fmt.Sprintf("/admin/roles/%d", id))
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	h.proxyList(w, r, "/admin/permissions")
}

// SetRolePermissions replaces a role's permission assignments; the payload
// is opaque to the gateway.
func (h *Handler) SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPut, fmt.Sprintf("/admin/roles/%d/permissions", id))
}
