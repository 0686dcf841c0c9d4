package sales

import (
	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/shared"
)

// MountEmployeeRoutes wires the quotation and order lifecycle for
// employees. The action routes carry static segments ahead of the id so
// chi matches them before the generic id patterns.
func (h *Handler) MountEmployeeRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleEmployee))

		r.Post("/quotations", h.CreateQuotation)
		r.Get("/quotations", h.ListQuotations)
		r.Post("/quotations/finalize/{id}", h.FinalizeQuotation)
		r.Post("/quotations/convert-to-order/{id}", h.ConvertQuotation)
		r.Get("/quotations/{id}", h.GetQuotation)
		r.Put("/quotations/{id}", h.UpdateQuotation)
		r.Delete("/quotations/{id}", h.DeleteQuotation)

		r.Get("/orders", h.ListOrders)
		r.Put("/orders/cancel/{id}", h.CancelOrder)
		r.Put("/orders/complete/{id}", h.CompleteOrder)
		r.Get("/orders/{id}", h.GetOrder)
		r.Delete("/orders/{id}", h.DeleteOrder)
	})
}

// MountManagerRoutes wires the supervision views for managers.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleManager))

		r.Get("/finalized-quotations", h.FinalizedQuotations)
		r.Get("/completed-orders", h.CompletedOrders)
	})
}
