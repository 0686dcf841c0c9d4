package attendance

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-erp/lattice/internal/shared"
	"github.com/lattice-erp/lattice/internal/users"
)

type mockRepository struct {
	records map[int64]map[string]*Record
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[int64]map[string]*Record), nextID: 1}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (m *mockRepository) MarkDay(ctx context.Context, userID int64, day time.Time, status string) (bool, error) {
	if m.records[userID] == nil {
		m.records[userID] = make(map[string]*Record)
	}
	if _, ok := m.records[userID][dayKey(day)]; ok {
		return false, nil
	}
	m.records[userID][dayKey(day)] = &Record{ID: m.nextID, UserID: userID, Day: truncateDay(day), Status: status}
	m.nextID++
	return true, nil
}

func (m *mockRepository) Upsert(ctx context.Context, userID int64, day time.Time, status string) error {
	if m.records[userID] == nil {
		m.records[userID] = make(map[string]*Record)
	}
	if rec, ok := m.records[userID][dayKey(day)]; ok {
		rec.Status = status
		return nil
	}
	m.records[userID][dayKey(day)] = &Record{ID: m.nextID, UserID: userID, Day: truncateDay(day), Status: status}
	m.nextID++
	return nil
}

func (m *mockRepository) HasRecord(ctx context.Context, userID int64, day time.Time) (bool, error) {
	_, ok := m.records[userID][dayKey(day)]
	return ok, nil
}

func (m *mockRepository) List(ctx context.Context, userID int64) ([]Record, error) {
	var out []Record
	for _, rec := range m.records[userID] {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *mockRepository) CountPresent(ctx context.Context, userID int64, from, to *time.Time) (int, error) {
	count := 0
	for _, rec := range m.records[userID] {
		if rec.Status != StatusPresent {
			continue
		}
		if from != nil && to != nil {
			if rec.Day.Before(truncateDay(*from)) || rec.Day.After(truncateDay(*to)) {
				continue
			}
		}
		count++
	}
	return count, nil
}

type mockUserRepo struct {
	users map[int64]*users.User
}

func (m *mockUserRepo) WithTx(ctx context.Context, fn func(context.Context, users.Repository) error) error {
	return fn(ctx, m)
}

func (m *mockUserRepo) Create(ctx context.Context, u users.User) (int64, error) {
	m.users[u.ID] = &u
	return u.ID, nil
}

func (m *mockUserRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByRole(ctx context.Context, id int64, role string) (*users.User, error) {
	u, ok := m.users[id]
	if !ok || u.Role != role {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role string) ([]users.User, error) {
	return nil, nil
}

func (m *mockUserRepo) ListManagers(ctx context.Context, orgAdminID int64) ([]users.User, error) {
	return nil, nil
}

func (m *mockUserRepo) ListEmployees(ctx context.Context, managerID int64) ([]users.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error { return nil }

func (m *mockUserRepo) RoleExists(ctx context.Context, role string) (bool, error) {
	return false, nil
}

func fixture() (*Service, *mockRepository) {
	orgAdmin := int64(1)
	manager := int64(2)
	salary := 22000.0
	userRepo := &mockUserRepo{users: map[int64]*users.User{
		2: {ID: 2, FirstName: "Mia", LastName: "Manager", Role: shared.RoleManager, OrgAdminID: &orgAdmin},
		3: {ID: 3, FirstName: "Eve", LastName: "Employee", Role: shared.RoleEmployee, ManagerID: &manager, OrgAdminID: &orgAdmin, Salary: &salary},
	}}
	repo := newMockRepository()
	svc := NewService(slog.Default(), repo, users.NewService(slog.Default(), userRepo))
	// Pin the clock to a Wednesday.
	svc.now = func() time.Time { return time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestCountWorkingDays(t *testing.T) {
	// June 2025 has 21 weekdays and no holidays.
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 21, CountWorkingDays(start, end))

	// Christmas week 2025: Dec 22-26 has four working days, the 25th is a
	// holiday.
	start = time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC)
	end = time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4, CountWorkingDays(start, end))

	// A weekend-only range has none.
	start = time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	end = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, CountWorkingDays(start, end))
}

func TestMarkTodayOncePerDay(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	records, err := svc.MarkToday(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusPresent, records[0].Status)

	_, err = svc.MarkToday(ctx, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicate))

	marked, err := svc.MarkedToday(ctx, 3)
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestUpsertOverwritesStatus(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, records, err := svc.UpsertEmployeeAttendance(ctx, 2, 3, day, StatusPresent)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, records, err = svc.UpsertEmployeeAttendance(ctx, 2, 3, day, StatusAbsent)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusAbsent, records[0].Status)

	count, err := repo.CountPresent(ctx, 3, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAttendanceOwnershipEnforced(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	_, _, err := svc.EmployeeAttendanceByManager(ctx, 99, 3)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, _, err = svc.ManagerAttendance(ctx, 99, 2)
	assert.True(t, errors.Is(err, shared.ErrForbidden))

	_, _, err = svc.EmployeeAttendanceByOrgAdmin(ctx, 1, 3)
	assert.NoError(t, err)
}

func TestEmployeeSalaryOverRange(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	// Mark 10 present days inside June 2025.
	for day := 2; day < 14; day++ {
		d := time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
		if !IsWorkingDay(d) {
			continue
		}
		_, _, err := svc.UpsertEmployeeAttendance(ctx, 2, 3, d, StatusPresent)
		require.NoError(t, err)
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	statement, err := svc.EmployeeSalary(ctx, 2, 3, &from, &to)
	require.NoError(t, err)

	// 22000 over 21 working days, 10 present.
	assert.Equal(t, 21, statement.TotalDays)
	assert.Equal(t, 10, statement.PresentDays)
	assert.Equal(t, 11, statement.AbsentDays)
	assert.InDelta(t, 1047.62, statement.PerDaySalary, 0.01)
	assert.InDelta(t, 10476.19, statement.FinalSalary, 0.01)
}

func TestManagerSalaryDefaultsFixed(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	statement, err := svc.ManagerSalary(ctx, 1, 2, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, float64(users.DefaultManagerSalary), statement.FixedSalary)
	assert.Equal(t, 0, statement.PresentDays)
	assert.Equal(t, 0.0, statement.FinalSalary)
}

func TestSalaryRejectsEmptyWorkingRange(t *testing.T) {
	svc, _ := fixture()

	from := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	_, err := svc.ManagerSalary(context.Background(), 1, 2, &from, &to)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
