package admin

import (
	"fmt"
	"net/http"
)

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	h.proxyList(w, r, "/admin/bookings")
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodGet, fmt.Sprintf("/admin/bookings/%d", id))
}

// UpdateBooking forwards status changes; booking business rules live
// entirely upstream.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPatch, fmt.Sprintf("/admin/bookings/%d", id))
}
