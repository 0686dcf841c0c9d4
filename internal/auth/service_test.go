package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lattice-erp/lattice/internal/shared"
)

type mockRepository struct {
	users map[int64]*User
}

func (m *mockRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Role == role {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func authFixture(t *testing.T) (*Service, *mockRepository, *TokenManager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockRepository{users: map[int64]*User{
		1: {
			ID: 1, FirstName: "Olive", LastName: "Owner",
			Email: "olive@acme.test", PasswordHash: string(hash),
			Role: shared.RoleOrgAdmin, Status: shared.StatusActive,
		},
	}}
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewService(repo, tokens), repo, tokens
}

func TestAuthenticateIssuesToken(t *testing.T) {
	svc, _, tokens := authFixture(t)

	user, token, err := svc.Authenticate(context.Background(), "olive@acme.test", shared.RoleOrgAdmin, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, shared.RoleOrgAdmin, claims.Role)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	svc, _, _ := authFixture(t)

	_, _, err := svc.Authenticate(context.Background(), "olive@acme.test", shared.RoleOrgAdmin, "wrong")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateIsRoleBound(t *testing.T) {
	svc, _, _ := authFixture(t)

	// Correct credentials on the wrong role's login route fail.
	_, _, err := svc.Authenticate(context.Background(), "olive@acme.test", shared.RoleManager, "correct-horse")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateRejectsDisabledAccount(t *testing.T) {
	svc, repo, _ := authFixture(t)
	repo.users[1].Status = shared.StatusDisabled

	_, _, err := svc.Authenticate(context.Background(), "olive@acme.test", shared.RoleOrgAdmin, "correct-horse")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestResolveTracksLiveUserRow(t *testing.T) {
	svc, repo, _ := authFixture(t)
	claims := &Claims{UserID: 1, Role: shared.RoleOrgAdmin}

	identity, err := svc.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleOrgAdmin, identity.Role)

	// A role change applies immediately even though the token still
	// carries the old role.
	repo.users[1].Role = shared.RoleManager
	identity, err = svc.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, shared.RoleManager, identity.Role)

	// Disabling the account cuts access before token expiry.
	repo.users[1].Status = shared.StatusDisabled
	_, err = svc.Resolve(context.Background(), claims)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestParseRejectsTamperedToken(t *testing.T) {
	svc, _, _ := authFixture(t)

	_, token, err := svc.Authenticate(context.Background(), "olive@acme.test", shared.RoleOrgAdmin, "correct-horse")
	require.NoError(t, err)

	other := NewTokenManager("different-secret", time.Hour)
	_, err = other.Parse(token)
	assert.Error(t, err)
}
