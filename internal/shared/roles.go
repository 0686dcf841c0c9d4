package shared

// Role names as carried in token claims and the users table.
const (
	RoleHostAdmin = "host-admin"
	RoleOrgAdmin  = "organization-admin"
	RoleManager   = "manager"
	RoleEmployee  = "employee"
)

// UserStatus values.
const (
	StatusActive   = "Active"
	StatusDisabled = "Disabled"
)

// AccessLevels lists the valid employee access levels.
func AccessLevels() []string {
	return []string{
		"Trainee",
		"Junior Employee",
		"Senior Employee",
		"Team Lead",
		"Supervisor",
	}
}
