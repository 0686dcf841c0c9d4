package users

// CreateAdminRequest creates a host admin or organization admin.
type CreateAdminRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// CreateManagerRequest creates a manager under the calling organization
// admin. Salary falls back to the standard manager salary when omitted.
type CreateManagerRequest struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Salary    *float64 `json:"salary,omitempty" validate:"omitempty,gt=0"`
}

// CreateEmployeeRequest creates an employee under the calling manager.
type CreateEmployeeRequest struct {
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Salary      float64 `json:"salary" validate:"required,gt=0"`
	AccessLevel string  `json:"accessLevel" validate:"required,oneof=Trainee 'Junior Employee' 'Senior Employee' 'Team Lead' Supervisor"`
}

// UpdateUserRequest carries optional profile updates; nil fields are left
// untouched.
type UpdateUserRequest struct {
	FirstName   *string  `json:"firstName,omitempty"`
	LastName    *string  `json:"lastName,omitempty"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string  `json:"password,omitempty" validate:"omitempty,min=8"`
	Salary      *float64 `json:"salary,omitempty" validate:"omitempty,gt=0"`
	AccessLevel *string  `json:"accessLevel,omitempty" validate:"omitempty,oneof=Trainee 'Junior Employee' 'Senior Employee' 'Team Lead' Supervisor"`
}
