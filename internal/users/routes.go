package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/shared"
)

// MountHostAdminRoutes wires the host admin surface. Registration and the
// existence probe are public so a fresh deployment can bootstrap itself;
// everything else requires a host admin token.
func (h *Handler) MountHostAdminRoutes(r chi.Router) {
	r.Post("/register", h.RegisterHostAdmin)
	r.Get("/exists", h.HostAdminExists)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleHostAdmin))

		r.Get("/hostAdmins", h.ListHostAdmins)
		r.Put("/update/{id}", h.UpdateHostAdmin)
		r.Delete("/delete/{id}", h.DeleteHostAdmin)

		r.Post("/organization-admins", h.CreateOrgAdmin)
		r.Get("/organization-admins", h.ListOrgAdmins)
		r.Put("/organization-admins/{id}", h.UpdateOrgAdmin)
		r.Delete("/organization-admins/{id}", h.DeleteOrgAdmin)
		r.Patch("/organization-admins/{id}/status", h.ToggleOrgAdminStatus)
	})
}

// MountOrgAdminRoutes wires manager administration for organization admins.
// Patterns are registered flat so sibling modules can hang attendance and
// reporting routes off the same prefix.
func (h *Handler) MountOrgAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleOrgAdmin))

		r.Post("/managers", h.CreateManager)
		r.Get("/managers", h.ListManagers)
		r.Put("/managers/{id}", h.UpdateManager)
		r.Delete("/managers/{id}", h.DeleteManager)
		r.Patch("/managers/{id}/status", h.ToggleManagerStatus)
		r.Get("/managers/{id}/employees", h.ListManagerEmployees)
	})
}

// MountManagerRoutes wires employee administration for managers.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleManager))

		r.Post("/employees", h.CreateEmployee)
		r.Get("/employees", h.ListEmployees)
		r.Put("/employees/{id}", h.UpdateEmployee)
		r.Delete("/employees/{id}", h.DeleteEmployee)
		r.Patch("/employees/{id}/status", h.ToggleEmployeeStatus)
	})
}
