package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials for the given role and
// issues a signed bearer token. A Disabled account cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, role, password string) (*User, string, error) {
	user, err := s.repo.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if user.Status != shared.StatusActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Resolve turns verified claims into a caller identity, re-reading the user
// row so role changes and disabled accounts take effect before token expiry.
func (s *Service) Resolve(ctx context.Context, claims *Claims) (*shared.Identity, error) {
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if user.Status != shared.StatusActive {
		return nil, shared.ErrUnauthorized
	}
	return &shared.Identity{
		UserID:    user.ID,
		Role:      user.Role,
		OrgAdmin:  user.OrgAdminID,
		ManagerID: user.ManagerID,
	}, nil
}
