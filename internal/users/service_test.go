package users

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lattice-erp/lattice/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Create(ctx context.Context, u User) (int64, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email && existing.Role == u.Role {
			return 0, shared.ErrDuplicate
		}
	}
	id := m.nextID
	m.nextID++
	u.ID = id
	m.users[id] = &u
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) GetByRole(ctx context.Context, id int64, role string) (*User, error) {
	u, ok := m.users[id]
	if !ok || u.Role != role {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockRepository) ListManagers(ctx context.Context, orgAdminID int64) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Role == shared.RoleManager && u.OrgAdminID != nil && *u.OrgAdminID == orgAdminID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockRepository) ListEmployees(ctx context.Context, managerID int64) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Role == shared.RoleEmployee && u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["first_name"]; ok {
		u.FirstName = v.(string)
	}
	if v, ok := updates["last_name"]; ok {
		u.LastName = v.(string)
	}
	if v, ok := updates["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := updates["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	if v, ok := updates["salary"]; ok {
		s := v.(float64)
		u.Salary = &s
	}
	if v, ok := updates["access_level"]; ok {
		a := v.(string)
		u.AccessLevel = &a
	}
	if v, ok := updates["status"]; ok {
		u.Status = v.(string)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(repo Repository) *Service {
	return NewService(slog.Default(), repo)
}

func TestCreateHostAdminSingleton(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	admin, err := svc.CreateHostAdmin(ctx, CreateAdminRequest{
		FirstName: "Ada", LastName: "Host", Email: "ada@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleHostAdmin, admin.Role)
	assert.Equal(t, shared.StatusActive, admin.Status)
	assert.NotEqual(t, "supersecret", admin.PasswordHash)

	_, err = svc.CreateHostAdmin(ctx, CreateAdminRequest{
		FirstName: "Bob", LastName: "Host", Email: "bob@example.com", Password: "supersecret",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicate))

	exists, err := svc.HostAdminExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateHostAdminHashesPassword(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	admin, err := svc.CreateHostAdmin(context.Background(), CreateAdminRequest{
		FirstName: "Ada", LastName: "Host", Email: "ada@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("supersecret")))
}

func TestCreateOrgAdminDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.CreateOrgAdmin(ctx, CreateAdminRequest{
		FirstName: "Org", LastName: "Admin", Email: "org@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.CreateOrgAdmin(ctx, CreateAdminRequest{
		FirstName: "Other", LastName: "Admin", Email: "org@example.com", Password: "supersecret",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicate))
}

func TestCreateManagerDefaultSalary(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	manager, err := svc.CreateManager(ctx, 42, CreateManagerRequest{
		FirstName: "Mia", LastName: "Manager", Email: "mia@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, manager.Salary)
	assert.Equal(t, float64(DefaultManagerSalary), *manager.Salary)
	require.NotNil(t, manager.OrgAdminID)
	assert.Equal(t, int64(42), *manager.OrgAdminID)

	salary := 85000.0
	manager2, err := svc.CreateManager(ctx, 42, CreateManagerRequest{
		FirstName: "Max", LastName: "Manager", Email: "max@example.com", Password: "supersecret",
		Salary: &salary,
	})
	require.NoError(t, err)
	assert.Equal(t, 85000.0, *manager2.Salary)
}

func TestManagerOwnershipEnforced(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	manager, err := svc.CreateManager(ctx, 1, CreateManagerRequest{
		FirstName: "Mia", LastName: "Manager", Email: "mia@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.UpdateManager(ctx, 2, manager.ID, UpdateUserRequest{FirstName: &name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	err = svc.DeleteManager(ctx, 2, manager.ID)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, err = svc.UpdateManager(ctx, 1, manager.ID, UpdateUserRequest{FirstName: &name})
	require.NoError(t, err)

	updated, err := svc.GetOwnedManager(ctx, 1, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FirstName)
}

func TestUpdateMissingManagerIsNotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	name := "Renamed"
	_, err := svc.UpdateManager(context.Background(), 1, 999, UpdateUserRequest{FirstName: &name})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestCreateEmployeeInheritsChain(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	manager, err := svc.CreateManager(ctx, 7, CreateManagerRequest{
		FirstName: "Mia", LastName: "Manager", Email: "mia@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	employee, err := svc.CreateEmployee(ctx, manager.ID, manager.OrgAdminID, CreateEmployeeRequest{
		FirstName: "Eve", LastName: "Employee", Email: "eve@example.com", Password: "supersecret",
		Salary: 50000, AccessLevel: "Trainee",
	})
	require.NoError(t, err)
	require.NotNil(t, employee.ManagerID)
	assert.Equal(t, manager.ID, *employee.ManagerID)
	require.NotNil(t, employee.OrgAdminID)
	assert.Equal(t, int64(7), *employee.OrgAdminID)
	assert.Equal(t, shared.RoleEmployee, employee.Role)

	listed, err := svc.ListManagerEmployees(ctx, 7, manager.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, employee.ID, listed[0].ID)
}

func TestToggleStatusFlips(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	admin, err := svc.CreateOrgAdmin(ctx, CreateAdminRequest{
		FirstName: "Org", LastName: "Admin", Email: "org@example.com", Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.StatusActive, admin.Status)

	toggled, err := svc.ToggleOrgAdminStatus(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusDisabled, toggled.Status)

	toggled, err = svc.ToggleOrgAdminStatus(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusActive, toggled.Status)
}

func TestUpdatePasswordRehashed(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	admin, err := svc.CreateOrgAdmin(ctx, CreateAdminRequest{
		FirstName: "Org", LastName: "Admin", Email: "org@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	newPassword := "anothersecret"
	updated, err := svc.UpdateOrgAdmin(ctx, admin.ID, UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("anothersecret")))
}
