// Package attendance tracks daily presence for managers and employees and
// derives attendance-based salary statements from it.
package attendance

import "time"

// Attendance statuses.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Record is one person's attendance for one calendar day. A person has at
// most one record per day.
type Record struct {
	ID        int64     `json:"_id"`
	UserID    int64     `json:"-"`
	Day       time.Time `json:"date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SalaryStatement is an attendance-based salary breakdown over a date range.
// The fixed salary is spread over the range's working days and paid out per
// present day.
type SalaryStatement struct {
	Name         string  `json:"name"`
	FixedSalary  float64 `json:"fixedSalary"`
	TotalDays    int     `json:"totalDays"`
	PresentDays  int     `json:"totalPresentDays"`
	AbsentDays   int     `json:"absentDays"`
	PerDaySalary float64 `json:"perDaySalary"`
	FinalSalary  float64 `json:"finalSalary"`
}
