package admin

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/fleetora/admin-gateway/internal"
)

// vehicleCollections are the catalog resources under /admin/vehicles.
// Anything else in the path is rejected before an upstream call.
var vehicleCollections = map[string]bool{
	"brands":         true,
	"models":         true,
	"categories":     true,
	"specifications": true,
	"locations":      true,
}

func (h *Handler) vehicleCollection(r *http.Request) (string, *internal.AppError) {
	collection := chi.URLParam(r, "collection")
	if !vehicleCollections[collection] {
		return "", internal.NewNotFoundError("unknown vehicle collection", internal.ErrCodeUnknownCollection)
	}
	return collection, nil
}

func (h *Handler) ListVehicleCollection(w http.ResponseWriter, r *http.Request) {
	collection, appErr := h.vehicleCollection(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxyList(w, r, "/admin/vehicles/"+collection)
}

func (h *Handler) CreateVehicleEntry(w http.ResponseWriter, r *http.Request) {
	collection, appErr := h.vehicleCollection(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPost, "/admin/vehicles/"+collection)
}

func (h *Handler) UpdateVehicleEntry(w http.ResponseWriter, r *http.Request) {
	collection, appErr := h.vehicleCollection(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodPatch, fmt.Sprintf("/admin/vehicles/%s/%d", collection, id))
}

func (h *Handler) DeleteVehicleEntry(w http.ResponseWriter, r *http.Request) {
	collection, appErr := h.vehicleCollection(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	id, appErr := h.numericID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.proxy(w, r, http.MethodDelete, fmt.Sprintf("/admin/vehicles/%s/%d", collection, id))
}
