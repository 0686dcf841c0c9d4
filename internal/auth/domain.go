package auth

import "time"

// User is the account view the auth module needs: credentials, role and the
// ownership chain that ends up in token claims.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	OrgAdminID   *int64
	ManagerID    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
