package users

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

// Handler serves account administration endpoints for every tier of the
// role hierarchy.
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

func (h *Handler) RegisterHostAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "All fields are required and the password must be at least 8 characters")
		return
	}

	user, err := h.service.CreateHostAdmin(r.Context(), req)
	if err != nil {
		h.respondError(w, "register host admin", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Host admin registered successfully", user)
}

func (h *Handler) HostAdminExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.service.HostAdminExists(r.Context())
	if err != nil {
		h.respondError(w, "host admin exists", err)
		return
	}
	httpx.Success(w, http.StatusOK, "", map[string]bool{"exists": exists})
}

func (h *Handler) ListHostAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListHostAdmins(r.Context())
	if err != nil {
		h.respondError(w, "list host admins", err)
		return
	}
	httpx.SuccessList(w, "Host admins fetched successfully", len(admins), admins)
}

func (h *Handler) UpdateHostAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	user, err := h.service.UpdateHostAdmin(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update host admin", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Host admin updated successfully", user)
}

func (h *Handler) DeleteHostAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteHostAdmin(r.Context(), id); err != nil {
		h.respondError(w, "delete host admin", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Host admin deleted successfully", nil)
}

func (h *Handler) CreateOrgAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "All fields are required and the password must be at least 8 characters")
		return
	}

	user, err := h.service.CreateOrgAdmin(r.Context(), req)
	if err != nil {
		h.respondError(w, "create organization admin", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Organization admin created successfully", user)
}

func (h *Handler) ListOrgAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListOrgAdmins(r.Context())
	if err != nil {
		h.respondError(w, "list organization admins", err)
		return
	}
	httpx.SuccessList(w, "Organization admins fetched successfully", len(admins), admins)
}

func (h *Handler) UpdateOrgAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	user, err := h.service.UpdateOrgAdmin(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update organization admin", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Organization admin updated successfully", user)
}

func (h *Handler) DeleteOrgAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOrgAdmin(r.Context(), id); err != nil {
		h.respondError(w, "delete organization admin", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Organization admin deleted successfully", nil)
}

func (h *Handler) ToggleOrgAdminStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.ToggleOrgAdminStatus(r.Context(), id)
	if err != nil {
		h.respondError(w, "toggle organization admin status", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Status updated successfully", user)
}

func (h *Handler) CreateManager(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateManagerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "All fields are required and the password must be at least 8 characters")
		return
	}

	user, err := h.service.CreateManager(r.Context(), identity.UserID, req)
	if err != nil {
		h.respondError(w, "create manager", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Manager created successfully", user)
}

func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	managers, err := h.service.ListManagers(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list managers", err)
		return
	}
	httpx.SuccessList(w, "Managers fetched successfully", len(managers), managers)
}

func (h *Handler) UpdateManager(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	user, err := h.service.UpdateManager(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "update manager", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Manager updated successfully", user)
}

func (h *Handler) DeleteManager(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteManager(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete manager", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Manager deleted successfully", nil)
}

func (h *Handler) ToggleManagerStatus(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.ToggleManagerStatus(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "toggle manager status", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Status updated successfully", user)
}

func (h *Handler) ListManagerEmployees(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	employees, err := h.service.ListManagerEmployees(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "list manager employees", err)
		return
	}
	httpx.SuccessList(w, "Employees fetched successfully", len(employees), employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	var req CreateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "All fields are required, including a positive salary and a valid access level")
		return
	}

	user, err := h.service.CreateEmployee(r.Context(), identity.UserID, identity.OrgAdmin, req)
	if err != nil {
		h.respondError(w, "create employee", err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Employee created successfully", user)
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	employees, err := h.service.ListEmployees(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "list employees", err)
		return
	}
	httpx.SuccessList(w, "Employees fetched successfully", len(employees), employees)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}
	user, err := h.service.UpdateEmployee(r.Context(), identity.UserID, id, req)
	if err != nil {
		h.respondError(w, "update employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Employee updated successfully", user)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, "delete employee", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *Handler) ToggleEmployeeStatus(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.ToggleEmployeeStatus(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "toggle employee status", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Status updated successfully", user)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeUpdate(w http.ResponseWriter, r *http.Request) (UpdateUserRequest, bool) {
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid field values")
		return req, false
	}
	return req, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
