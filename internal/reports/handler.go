package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lattice-erp/lattice/internal/auth"
	"github.com/lattice-erp/lattice/internal/platform/httpx"
	"github.com/lattice-erp/lattice/internal/shared"
)

// Handler serves the aggregation report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	auth    auth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, auth: authmw}
}

// MountOrgAdminRoutes wires the organization level reports.
func (h *Handler) MountOrgAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleOrgAdmin))

		r.Get("/sales-report", h.SalesReport)
		r.Get("/profit-loss", h.ProfitLoss)
		r.Get("/manager/sales-report", h.ManagerPerformance)
	})
}

// MountManagerRoutes wires the manager's team report.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleManager))

		r.Get("/sales-report", h.EmployeePerformance)
	})
}

// MountHostAdminRoutes wires the system-wide revenue report.
func (h *Handler) MountHostAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verify)
		r.Use(h.auth.RequireRole(shared.RoleHostAdmin))

		r.Get("/revenue", h.SystemRevenue)
	})
}

func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	rangeParam, startDate, endDate := reportParams(r)

	report, err := h.service.SalesReport(r.Context(), identity.UserID, rangeParam, startDate, endDate)
	if err != nil {
		h.respondError(w, "sales report", err)
		return
	}
	report.Status = "success"
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	rangeParam, startDate, endDate := reportParams(r)

	report, err := h.service.ProfitLoss(r.Context(), identity.UserID, rangeParam, startDate, endDate)
	if err != nil {
		h.respondError(w, "profit loss report", err)
		return
	}
	report.Status = "success"
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) SystemRevenue(w http.ResponseWriter, r *http.Request) {
	rangeParam, startDate, endDate := reportParams(r)

	report, err := h.service.SystemRevenue(r.Context(), rangeParam, startDate, endDate)
	if err != nil {
		h.respondError(w, "revenue report", err)
		return
	}
	report.Status = "success"
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) ManagerPerformance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	rangeParam, startDate, endDate := reportParams(r)

	report, err := h.service.ManagerPerformance(r.Context(), identity.UserID, rangeParam, startDate, endDate)
	if err != nil {
		h.respondError(w, "manager performance report", err)
		return
	}
	report.Status = "success"
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) EmployeePerformance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	rangeParam, startDate, endDate := reportParams(r)

	report, err := h.service.EmployeePerformance(r.Context(), identity.UserID, rangeParam, startDate, endDate)
	if err != nil {
		h.respondError(w, "employee performance report", err)
		return
	}
	report.Status = "success"
	httpx.JSON(w, http.StatusOK, report)
}

func reportParams(r *http.Request) (rangeParam, startDate, endDate string) {
	q := r.URL.Query()
	return q.Get("range"), q.Get("startDate"), q.Get("endDate")
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
