package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lattice-erp/lattice/internal/platform/httpx"
)

// Handler serves the per-role login endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// LoginRequest is the credential payload shared by all login routes.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the issued token and a trimmed user view.
type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// LoginUser is the user projection returned on login; the password hash
// never leaves the service.
type LoginUser struct {
	ID        int64  `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

// Login returns a login handler bound to one role. The route determines the
// role; credentials for another role 401 even when correct.
func (h *Handler) Login(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		user, token, err := h.service.Authenticate(r.Context(), req.Email, role, req.Password)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		httpx.Success(w, http.StatusOK, "Login successful", LoginResponse{
			Token: token,
			User: LoginUser{
				ID:        user.ID,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Email:     user.Email,
				Role:      user.Role,
				Status:    user.Status,
			},
		})
	}
}
