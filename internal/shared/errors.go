package shared

import "errors"

var (
	// ErrNotFound indicates the record does not exist, is owned by someone
	// else, or is in a state the operation does not accept. Callers cannot
	// tell these apart on purpose.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates bad request input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the authenticated role may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientStock indicates a conversion asked for more units than available.
	ErrInsufficientStock = errors.New("insufficient stock")
)
