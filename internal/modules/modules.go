package modules

import (
	"encoding/json"
	"net/http"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/transport"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

// Module describes one back-office feature area. The table below is the
// single endpoint that never forwards upstream: it is fixed in-process
// configuration.
type Module struct {
	Key         string       `json:"key"`
	DisplayName string       `json:"display_name"`
	Route       string       `json:"route"`
	Icon        string       `json:"icon"`
	Permissions PermissionSet `json:"permissions"`
	SubItems    []SubItem    `json:"sub_items,omitempty"`
}

type SubItem struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Route       string `json:"route"`
}

// PermissionSet carries the three flags used to gate UI navigation.
type PermissionSet struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// AllGranted is the fail-open fallback set.
var AllGranted = PermissionSet{CanView: true, CanEdit: true, CanDelete: true}

// ActiveModules is the static module registry served to the client shell.
var ActiveModules = []Module{
	{
		Key:         "users",
		DisplayName: "Users",
		Route:       "/admin/users",
		Icon:        "users",
		Permissions: AllGranted,
	},
	{
		Key:         "bookings",
		DisplayName: "Bookings",
		Route:       "/admin/bookings",
		Icon:        "calendar",
		Permissions: AllGranted,
	},
	{
		Key:         "vehicles",
		DisplayName: "Vehicles",
		Route:       "/admin/vehicles",
		Icon:        "car",
		Permissions: AllGranted,
		SubItems: []SubItem{
			{Key: "brands", DisplayName: "Brands", Route: "/admin/vehicles/brands"},
			{Key: "models", DisplayName: "Models", Route: "/admin/vehicles/models"},
			{Key: "categories", DisplayName: "Categories", Route: "/admin/vehicles/categories"},
			{Key: "specifications", DisplayName: "Specifications", Route: "/admin/vehicles/specifications"},
			{Key: "locations", DisplayName: "Locations", Route: "/admin/vehicles/locations"},
		},
	},
	{
		Key:         "automations",
		DisplayName: "Workflows",
		Route:       "/admin/automations",
		Icon:        "workflow",
		Permissions: AllGranted,
	},
	{
		Key:         "roles",
		DisplayName: "Roles & Permissions",
		Route:       "/admin/roles",
		Icon:        "shield",
		Permissions: AllGranted,
	},
	{
		Key:         "balance",
		DisplayName: "Balance",
		Route:       "/admin/balance",
		Icon:        "wallet",
		Permissions: AllGranted,
	},
	{
		Key:         "audit",
		DisplayName: "Audit Log",
		Route:       "/admin/audit",
		Icon:        "history",
		Permissions: AllGranted,
	},
	{
		Key:         "docs",
		DisplayName: "Documentation",
		Route:       "/admin/docs",
		Icon:        "book",
		Permissions: PermissionSet{CanView: true},
	},
}

type Handler struct {
	*transport.BaseHandler
	permissions *PermissionStore
}

func NewHandler(base *transport.BaseHandler, permissions *PermissionStore) *Handler {
	return &Handler{BaseHandler: base, permissions: permissions}
}

// GetMyPermissions serves the caller's cached module permission set.
func (h *Handler) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.permissions.Get(r.Context(), internal.TokenFromContext(r.Context()))

	data, err := json.Marshal(perms)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.WriteEnvelope(w, upstream.Envelope{Status: http.StatusOK, Data: data})
}

// GetActiveModules serves the static registry. No upstream call is made.
func (h *Handler) GetActiveModules(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(ActiveModules)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.WriteEnvelope(w, upstream.Envelope{Status: http.StatusOK, Data: data})
}
