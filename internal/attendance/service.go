package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lattice-erp/lattice/internal/shared"
	"github.com/lattice-erp/lattice/internal/users"
)

var (
	errAlreadyMarked = fmt.Errorf("%w: attendance already marked for today", shared.ErrDuplicate)
	errNoWorkingDays = fmt.Errorf("%w: invalid date range, no working days found", shared.ErrValidation)
)

// Service implements attendance marking, supervision views and salary
// statements. Ownership checks are delegated to the users service so the
// hierarchy rules live in one place.
type Service struct {
	logger *slog.Logger
	repo   Repository
	users  *users.Service
	now    func() time.Time
}

// NewService constructs the attendance service.
func NewService(logger *slog.Logger, repo Repository, usersService *users.Service) *Service {
	return &Service{logger: logger, repo: repo, users: usersService, now: time.Now}
}

// MarkToday records a Present entry for the caller's current day. A second
// mark on the same day fails.
func (s *Service) MarkToday(ctx context.Context, userID int64) ([]Record, error) {
	inserted, err := s.repo.MarkDay(ctx, userID, s.now(), StatusPresent)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, errAlreadyMarked
	}
	return s.repo.List(ctx, userID)
}

// MarkedToday reports whether the caller already has a record for today.
func (s *Service) MarkedToday(ctx context.Context, userID int64) (bool, error) {
	return s.repo.HasRecord(ctx, userID, s.now())
}

// ManagerAttendance returns an owned manager's records, newest first.
func (s *Service) ManagerAttendance(ctx context.Context, orgAdminID, managerID int64) (*users.User, []Record, error) {
	manager, err := s.users.GetOwnedManager(ctx, orgAdminID, managerID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.List(ctx, managerID)
	if err != nil {
		return nil, nil, err
	}
	return manager, records, nil
}

// UpsertManagerAttendance sets an owned manager's status for a date,
// creating the record when the day is not marked yet.
func (s *Service) UpsertManagerAttendance(ctx context.Context, orgAdminID, managerID int64, day time.Time, status string) (*users.User, []Record, error) {
	manager, err := s.users.GetOwnedManager(ctx, orgAdminID, managerID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.Upsert(ctx, managerID, day, status); err != nil {
		return nil, nil, err
	}
	records, err := s.repo.List(ctx, managerID)
	if err != nil {
		return nil, nil, err
	}
	return manager, records, nil
}

// EmployeeAttendanceByManager returns an owned employee's records.
func (s *Service) EmployeeAttendanceByManager(ctx context.Context, managerID, employeeID int64) (*users.User, []Record, error) {
	employee, err := s.users.GetOwnedEmployee(ctx, managerID, employeeID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.List(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return employee, records, nil
}

// EmployeeAttendanceByOrgAdmin returns records for an employee anywhere in
// the caller's organization.
func (s *Service) EmployeeAttendanceByOrgAdmin(ctx context.Context, orgAdminID, employeeID int64) (*users.User, []Record, error) {
	employee, err := s.users.GetOrgEmployee(ctx, orgAdminID, employeeID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.List(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return employee, records, nil
}

// UpsertEmployeeAttendance sets an owned employee's status for a date.
func (s *Service) UpsertEmployeeAttendance(ctx context.Context, managerID, employeeID int64, day time.Time, status string) (*users.User, []Record, error) {
	employee, err := s.users.GetOwnedEmployee(ctx, managerID, employeeID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.Upsert(ctx, employeeID, day, status); err != nil {
		return nil, nil, err
	}
	records, err := s.repo.List(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return employee, records, nil
}

// EmployeeSalary computes an owned employee's attendance-based salary for
// the range. Missing bounds default to today through the end of the start
// month.
func (s *Service) EmployeeSalary(ctx context.Context, managerID, employeeID int64, from, to *time.Time) (*SalaryStatement, error) {
	employee, err := s.users.GetOwnedEmployee(ctx, managerID, employeeID)
	if err != nil {
		return nil, err
	}
	fixed := 0.0
	if employee.Salary != nil {
		fixed = *employee.Salary
	}
	return s.buildStatement(ctx, employee, fixed, from, to)
}

// ManagerSalary computes an owned manager's attendance-based salary for the
// range, falling back to the standard manager salary when none is set.
func (s *Service) ManagerSalary(ctx context.Context, orgAdminID, managerID int64, from, to *time.Time) (*SalaryStatement, error) {
	manager, err := s.users.GetOwnedManager(ctx, orgAdminID, managerID)
	if err != nil {
		return nil, err
	}
	fixed := float64(users.DefaultManagerSalary)
	if manager.Salary != nil && *manager.Salary > 0 {
		fixed = *manager.Salary
	}
	return s.buildStatement(ctx, manager, fixed, from, to)
}

func (s *Service) buildStatement(ctx context.Context, u *users.User, fixed float64, from, to *time.Time) (*SalaryStatement, error) {
	start := s.now()
	if from != nil {
		start = *from
	}
	end := endOfMonth(start)
	if to != nil {
		end = *to
	}

	workingDays := CountWorkingDays(start, end)
	if workingDays <= 0 {
		return nil, errNoWorkingDays
	}

	// Present days are only range-filtered when the caller supplied both
	// bounds; otherwise the full history counts.
	presentDays, err := s.repo.CountPresent(ctx, u.ID, from, to)
	if err != nil {
		return nil, err
	}

	perDay := fixed / float64(workingDays)
	return &SalaryStatement{
		Name:         u.FirstName + " " + u.LastName,
		FixedSalary:  fixed,
		TotalDays:    workingDays,
		PresentDays:  presentDays,
		AbsentDays:   workingDays - presentDays,
		PerDaySalary: round2(perDay),
		FinalSalary:  round2(perDay * float64(presentDays)),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
