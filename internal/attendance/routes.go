package attendance

import (
	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/shared"
)

// MountEmployeeRoutes wires self-service attendance for employees.
func (h *Handler) MountEmployeeRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleEmployee))

		r.Post("/attendance/mark", h.MarkToday)
		r.Get("/attendance/today", h.Today)
	})
}

// MountManagerRoutes wires self-service attendance plus employee attendance
// supervision and salary statements for managers.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleManager))

		r.Post("/attendance/mark", h.MarkToday)
		r.Get("/attendance/today", h.Today)

		r.Get("/employees/{id}/attendance", h.ViewEmployeeAttendance)
		r.Put("/employees/{id}/attendance", h.UpdateEmployeeAttendance)

		r.Get("/salary/employee/{id}", h.EmployeeSalary)
	})
}

// MountOrgAdminRoutes wires manager attendance supervision and manager
// salary statements for organization admins.
func (h *Handler) MountOrgAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleOrgAdmin))

		r.Get("/managers/{id}/attendance", h.ViewManagerAttendance)
		r.Put("/managers/{id}/attendance", h.UpdateManagerAttendance)
		r.Get("/manager/employees/{id}/attendance", h.ViewEmployeeAttendanceByOrgAdmin)

		r.Get("/salary/manager/{id}", h.ManagerSalary)
	})
}
