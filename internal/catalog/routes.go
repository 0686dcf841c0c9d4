package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/shared"
)

// MountOrgAdminRoutes wires category and product management for
// organization admins. The stock routes are registered before the generic
// product id routes so chi matches the static segments first.
func (h *Handler) MountOrgAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleOrgAdmin))

		r.Post("/categories", h.CreateCategory)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{id}", h.GetCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Post("/products", h.CreateProduct)
		r.Get("/products", h.ListProducts)
		r.Put("/products/add-stock/{id}", h.AddStock)
		r.Put("/products/remove-stock/{id}", h.RemoveStock)
		r.Get("/products/{id}", h.GetProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
	})
}

// MountEmployeeRoutes wires the read-only product listing for employees.
func (h *Handler) MountEmployeeRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleEmployee))

		r.Get("/products", h.BrowseProducts)
	})
}
