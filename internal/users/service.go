package users

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/lattice-erp/lattice/internal/shared"
)

// DefaultManagerSalary is applied when a manager is created without one.
const DefaultManagerSalary = 100000

var (
	errHostAdminExists = fmt.Errorf("%w: a host admin is already registered", shared.ErrDuplicate)
	errEmailInUse      = fmt.Errorf("%w: email already in use for this role", shared.ErrDuplicate)
	errNotOwned        = fmt.Errorf("%w: account belongs to another organization", shared.ErrForbidden)
)

// Service implements account administration across the role hierarchy.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService constructs the user service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// CreateHostAdmin registers the single host admin account. The existence
// check and insert run in one transaction; the partial unique index on the
// role backstops concurrent registrations.
func (s *Service) CreateHostAdmin(ctx context.Context, req CreateAdminRequest) (*User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var created *User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		exists, err := tx.RoleExists(ctx, shared.RoleHostAdmin)
		if err != nil {
			return err
		}
		if exists {
			return errHostAdminExists
		}
		id, err := tx.Create(ctx, User{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         shared.RoleHostAdmin,
			Status:       shared.StatusActive,
		})
		if err != nil {
			return err
		}
		created, err = tx.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return created, nil
}

// HostAdminExists reports whether a host admin account is registered, used
// by clients to decide between the bootstrap and login screens.
func (s *Service) HostAdminExists(ctx context.Context) (bool, error) {
	return s.repo.RoleExists(ctx, shared.RoleHostAdmin)
}

// ListHostAdmins returns all host admin accounts.
func (s *Service) ListHostAdmins(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, shared.RoleHostAdmin)
}

// UpdateHostAdmin applies a partial profile update to a host admin account.
func (s *Service) UpdateHostAdmin(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if _, err := s.repo.GetByRole(ctx, id, shared.RoleHostAdmin); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, id, req)
}

// DeleteHostAdmin removes a host admin account.
func (s *Service) DeleteHostAdmin(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByRole(ctx, id, shared.RoleHostAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// CreateOrgAdmin creates an organization admin account.
func (s *Service) CreateOrgAdmin(ctx context.Context, req CreateAdminRequest) (*User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         shared.RoleOrgAdmin,
		Status:       shared.StatusActive,
	})
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return s.repo.Get(ctx, id)
}

// ListOrgAdmins returns all organization admin accounts.
func (s *Service) ListOrgAdmins(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, shared.RoleOrgAdmin)
}

// UpdateOrgAdmin applies a partial update to an organization admin.
func (s *Service) UpdateOrgAdmin(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	if _, err := s.repo.GetByRole(ctx, id, shared.RoleOrgAdmin); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, id, req)
}

// DeleteOrgAdmin removes an organization admin account.
func (s *Service) DeleteOrgAdmin(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByRole(ctx, id, shared.RoleOrgAdmin); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToggleOrgAdminStatus flips an organization admin between Active and
// Disabled.
func (s *Service) ToggleOrgAdminStatus(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByRole(ctx, id, shared.RoleOrgAdmin)
	if err != nil {
		return nil, err
	}
	return s.toggleStatus(ctx, u)
}

// CreateManager creates a manager owned by the calling organization admin.
func (s *Service) CreateManager(ctx context.Context, orgAdminID int64, req CreateManagerRequest) (*User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	salary := float64(DefaultManagerSalary)
	if req.Salary != nil {
		salary = *req.Salary
	}
	id, err := s.repo.Create(ctx, User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         shared.RoleManager,
		Status:       shared.StatusActive,
		Salary:       &salary,
		OrgAdminID:   &orgAdminID,
	})
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return s.repo.Get(ctx, id)
}

// ListManagers returns the calling organization admin's managers.
func (s *Service) ListManagers(ctx context.Context, orgAdminID int64) ([]User, error) {
	return s.repo.ListManagers(ctx, orgAdminID)
}

// GetOwnedManager loads a manager and verifies it belongs to the caller.
func (s *Service) GetOwnedManager(ctx context.Context, orgAdminID, id int64) (*User, error) {
	u, err := s.repo.GetByRole(ctx, id, shared.RoleManager)
	if err != nil {
		return nil, err
	}
	if u.OrgAdminID == nil || *u.OrgAdminID != orgAdminID {
		return nil, errNotOwned
	}
	return u, nil
}

// UpdateManager applies a partial update to an owned manager.
func (s *Service) UpdateManager(ctx context.Context, orgAdminID, id int64, req UpdateUserRequest) (*User, error) {
	if _, err := s.GetOwnedManager(ctx, orgAdminID, id); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, id, req)
}

// DeleteManager removes an owned manager.
func (s *Service) DeleteManager(ctx context.Context, orgAdminID, id int64) error {
	if _, err := s.GetOwnedManager(ctx, orgAdminID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToggleManagerStatus flips an owned manager between Active and Disabled.
func (s *Service) ToggleManagerStatus(ctx context.Context, orgAdminID, id int64) (*User, error) {
	u, err := s.GetOwnedManager(ctx, orgAdminID, id)
	if err != nil {
		return nil, err
	}
	return s.toggleStatus(ctx, u)
}

// ListManagerEmployees returns the employees of an owned manager.
func (s *Service) ListManagerEmployees(ctx context.Context, orgAdminID, managerID int64) ([]User, error) {
	if _, err := s.GetOwnedManager(ctx, orgAdminID, managerID); err != nil {
		return nil, err
	}
	return s.repo.ListEmployees(ctx, managerID)
}

// CreateEmployee creates an employee under the calling manager, inheriting
// the manager's organization admin.
func (s *Service) CreateEmployee(ctx context.Context, managerID int64, orgAdminID *int64, req CreateEmployeeRequest) (*User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         shared.RoleEmployee,
		Status:       shared.StatusActive,
		Salary:       &req.Salary,
		AccessLevel:  &req.AccessLevel,
		OrgAdminID:   orgAdminID,
		ManagerID:    &managerID,
	})
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return s.repo.Get(ctx, id)
}

// ListEmployees returns the calling manager's employees.
func (s *Service) ListEmployees(ctx context.Context, managerID int64) ([]User, error) {
	return s.repo.ListEmployees(ctx, managerID)
}

// GetOwnedEmployee loads an employee and verifies it reports to the caller.
func (s *Service) GetOwnedEmployee(ctx context.Context, managerID, id int64) (*User, error) {
	u, err := s.repo.GetByRole(ctx, id, shared.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if u.ManagerID == nil || *u.ManagerID != managerID {
		return nil, errNotOwned
	}
	return u, nil
}

// GetOrgEmployee loads an employee and verifies it belongs to the caller's
// organization.
func (s *Service) GetOrgEmployee(ctx context.Context, orgAdminID, id int64) (*User, error) {
	u, err := s.repo.GetByRole(ctx, id, shared.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if u.OrgAdminID == nil || *u.OrgAdminID != orgAdminID {
		return nil, errNotOwned
	}
	return u, nil
}

// UpdateEmployee applies a partial update to an owned employee.
func (s *Service) UpdateEmployee(ctx context.Context, managerID, id int64, req UpdateUserRequest) (*User, error) {
	if _, err := s.GetOwnedEmployee(ctx, managerID, id); err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, id, req)
}

// DeleteEmployee removes an owned employee.
func (s *Service) DeleteEmployee(ctx context.Context, managerID, id int64) error {
	if _, err := s.GetOwnedEmployee(ctx, managerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ToggleEmployeeStatus flips an owned employee between Active and Disabled.
func (s *Service) ToggleEmployeeStatus(ctx context.Context, managerID, id int64) (*User, error) {
	u, err := s.GetOwnedEmployee(ctx, managerID, id)
	if err != nil {
		return nil, err
	}
	return s.toggleStatus(ctx, u)
}

func (s *Service) applyUpdate(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if req.Salary != nil {
		updates["salary"] = *req.Salary
	}
	if req.AccessLevel != nil {
		updates["access_level"] = *req.AccessLevel
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, mapDuplicate(err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) toggleStatus(ctx context.Context, u *User) (*User, error) {
	next := shared.StatusDisabled
	if u.Status == shared.StatusDisabled {
		next = shared.StatusActive
	}
	if err := s.repo.Update(ctx, u.ID, map[string]interface{}{"status": next}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, u.ID)
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func mapDuplicate(err error) error {
	if err == shared.ErrDuplicate {
		return errEmailInUse
	}
	return err
}
