package catalog

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

// Handler serves catalog endpoints for organization admins and the
// read-only product listing for employees.
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

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Category name is required")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), identity.UserID, req)
	if err != nil {
		h.respondError(w, "create category", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Category created successfully", category)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	categories, err := h.service.ListCategories(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list categories", err)
		return
	}
	httpx.SuccessList(w, "Categories fetched successfully", len(categories), categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	category, err := h.service.GetCategory(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "get category", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Category fetched successfully", category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Category name is required")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "update category", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Category updated successfully", category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete category", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Category deleted successfully", nil)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Name, price and category are required")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), identity.UserID, req)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Product created successfully", product)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	products, err := h.service.ListProducts(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list products", err)
		return
	}
	httpx.SuccessList(w, "Products fetched successfully", len(products), products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.GetProduct(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Product fetched successfully", product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid field values")
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "update product", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Product updated successfully", product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete product", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	qty, ok := h.decodeQuantity(w, r)
	if !ok {
		return
	}
	product, err := h.service.AddStock(r.Context(), identity.UserID, id, qty)
	if err != nil {
		h.respondError(w, "add stock", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Stock added successfully", product)
}

func (h *Handler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	qty, ok := h.decodeQuantity(w, r)
	if !ok {
		return
	}
	product, err := h.service.RemoveStock(r.Context(), identity.UserID, id, qty)
	if err != nil {
		h.respondError(w, "remove stock", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Stock removed successfully", product)
}

func (h *Handler) BrowseProducts(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	products, err := h.service.BrowseProducts(r.Context(), identity.OrgAdmin)
	if err != nil {
		h.respondError(w, "browse products", err)
		return
	}
	httpx.SuccessList(w, "Products fetched successfully", len(products), products)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeQuantity(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req StockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return 0, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Quantity must be a positive number")
		return 0, false
	}
	return req.Quantity, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
