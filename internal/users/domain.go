package users

import "time"

// User represents an account anywhere in the role hierarchy. Salary and
// access level are only set for managers and employees; the chain fields
// point at the owning organization admin and manager.
type User struct {
	ID          int64      `json:"_id" db:"id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Role        string     `json:"role" db:"role"`
	Status      string     `json:"status" db:"status"`
	Salary      *float64   `json:"salary,omitempty" db:"salary"`
	AccessLevel *string    `json:"accessLevel,omitempty" db:"access_level"`
	OrgAdminID  *int64     `json:"organizationAdminId,omitempty" db:"organization_admin_id"`
	ManagerID   *int64     `json:"managerId,omitempty" db:"manager_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	PasswordHash string `json:"-" db:"password_hash"`
}
