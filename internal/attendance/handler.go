package attendance

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lattice-erp/lattice/internal/auth"
	"github.com/lattice-erp/lattice/internal/platform/httpx"
	"github.com/lattice-erp/lattice/internal/shared"
)

// Handler serves attendance and salary endpoints.
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

// UpsertAttendanceRequest sets one person's status for one date.
type UpsertAttendanceRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=Present Absent"`
}

type attendanceView struct {
	Name    string   `json:"name"`
	Records []Record `json:"attendance"`
}

func (h *Handler) MarkToday(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	records, err := h.service.MarkToday(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "mark attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance marked successfully", records)
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	marked, err := h.service.MarkedToday(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, "check today attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "", map[string]bool{"marked": marked})
}

func (h *Handler) ViewManagerAttendance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	manager, records, err := h.service.ManagerAttendance(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "view manager attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance fetched successfully", attendanceView{
		Name:    manager.FirstName + " " + manager.LastName,
		Records: records,
	})
}

func (h *Handler) UpdateManagerAttendance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	day, req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}
	manager, records, err := h.service.UpsertManagerAttendance(r.Context(), identity.UserID, id, day, req.Status)
	if err != nil {
		h.respondError(w, "update manager attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance updated successfully", attendanceView{
		Name:    manager.FirstName + " " + manager.LastName,
		Records: records,
	})
}

func (h *Handler) ViewEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	employee, records, err := h.service.EmployeeAttendanceByManager(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "view employee attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance fetched successfully", attendanceView{
		Name:    employee.FirstName + " " + employee.LastName,
		Records: records,
	})
}

func (h *Handler) ViewEmployeeAttendanceByOrgAdmin(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	employee, records, err := h.service.EmployeeAttendanceByOrgAdmin(r.Context(), identity.UserID, id)
	if err != nil {
		h.respondError(w, "view employee attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance fetched successfully", attendanceView{
		Name:    employee.FirstName + " " + employee.LastName,
		Records: records,
	})
}

func (h *Handler) UpdateEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	day, req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}
	employee, records, err := h.service.UpsertEmployeeAttendance(r.Context(), identity.UserID, id, day, req.Status)
	if err != nil {
		h.respondError(w, "update employee attendance", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance updated successfully", attendanceView{
		Name:    employee.FirstName + " " + employee.LastName,
		Records: records,
	})
}

func (h *Handler) EmployeeSalary(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	statement, err := h.service.EmployeeSalary(r.Context(), identity.UserID, id, from, to)
	if err != nil {
		h.respondError(w, "employee salary", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance-based salary calculated successfully", statement)
}

func (h *Handler) ManagerSalary(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	statement, err := h.service.ManagerSalary(r.Context(), identity.UserID, id, from, to)
	if err != nil {
		h.respondError(w, "manager salary", err)
		return
	}
	httpx.Success(w, http.StatusOK, "Attendance-based salary calculated successfully", statement)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeUpsert(w http.ResponseWriter, r *http.Request) (time.Time, UpsertAttendanceRequest, bool) {
	var req UpsertAttendanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return time.Time{}, req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Date and status are required")
		return time.Time{}, req, false
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid date")
		return time.Time{}, req, false
	}
	return day, req, true
}

// dateRange parses optional startDate/endDate query parameters. Both must be
// present for the range to apply.
func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	startRaw := r.URL.Query().Get("startDate")
	endRaw := r.URL.Query().Get("endDate")
	if startRaw == "" || endRaw == "" {
		return nil, nil, true
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid startDate")
		return nil, nil, false
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid endDate")
		return nil, nil, false
	}
	return &start, &end, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
