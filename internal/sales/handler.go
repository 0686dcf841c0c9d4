package sales

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lattice-erp/lattice/internal/auth"
	"github.com/lattice-erp/lattice/internal/platform/httpx"
	"github.com/lattice-erp/lattice/internal/shared"
)

// Handler serves quotation and order endpoints for employees and the
// supervision views for managers.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	auth     auth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		auth:     authmw,
	}
}

func (h *Handler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Quotation must have a customer and at least one item")
		return
	}

	quotation, err := h.service.CreateQuotation(r.Context(), identity, req)
	if err != nil {
		h.respondError(w, "create quotation", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Quotation created successfully", quotation)
}

func (h *Handler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	quotations, err := h.service.ListQuotations(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list quotations", err)
		return
	}
	httpx.SuccessList(w, "Quotations fetched successfully", len(quotations), quotations)
}

func (h *Handler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.GetQuotation(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "get quotation", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Quotation fetched successfully", quotation)
}

func (h *Handler) UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid field values")
		return
	}

	quotation, err := h.service.UpdateQuotation(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "update quotation", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Quotation updated successfully", quotation)
}

func (h *Handler) DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteQuotation(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete quotation", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Quotation deleted successfully", nil)
}

func (h *Handler) FinalizeQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req FinalizeQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Tax and charges must not be negative")
		return
	}

	quotation, err := h.service.FinalizeQuotation(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "finalize quotation", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Quotation finalized successfully", quotation)
}

func (h *Handler) ConvertQuotation(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ConvertQuotationRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid payment method")
			return
		}
	}

	order, err := h.service.ConvertQuotation(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "convert quotation", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Quotation converted to order successfully", order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	orders, err := h.service.ListOrders(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list orders", err)
		return
	}
	httpx.SuccessList(w, "Orders fetched successfully", len(orders), orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	order, err := h.service.GetOrder(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Order fetched successfully", order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	order, err := h.service.CancelOrder(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "cancel order", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Order cancelled successfully", order)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	order, err := h.service.CompleteOrder(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "complete order", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Order completed successfully", order)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOrder(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete order", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Order deleted successfully", nil)
}

func (h *Handler) FinalizedQuotations(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	quotations, err := h.service.FinalizedQuotationsForManager(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list finalized quotations", err)
		return
	}
	httpx.SuccessList(w, "Finalized quotations fetched successfully", len(quotations), quotations)
}

func (h *Handler) CompletedOrders(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	orders, err := h.service.CompletedOrdersForManager(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list completed orders", err)
		return
	}
	httpx.SuccessList(w, "Completed orders fetched successfully", len(orders), orders)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
