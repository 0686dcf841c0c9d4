package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmailAndRole(ctx context.Context, email, role string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, status,
	organization_admin_id, manager_id, created_at, updated_at`

// FindByEmailAndRole fetches a user by email within a role. Email uniqueness
// is per role, matching the (email, role) unique index.
func (r *PGRepository) FindByEmailAndRole(ctx context.Context, email, role string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND role = $2`, email, role)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var orgAdmin, manager pgtype.Int8
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&orgAdmin, &manager, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if orgAdmin.Valid {
		u.OrgAdminID = &orgAdmin.Int64
	}
	if manager.Valid {
		u.ManagerID = &manager.Int64
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
