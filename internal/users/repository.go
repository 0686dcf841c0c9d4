package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/platform/db"
	"github.com/lattice-erp/lattice/internal/shared"
)

// Repository defines persistence operations for user administration.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, u User) (int64, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByRole(ctx context.Context, id int64, role string) (*User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	ListManagers(ctx context.Context, orgAdminID int64) ([]User, error)
	ListEmployees(ctx context.Context, managerID int64) ([]User, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	RoleExists(ctx context.Context, role string) (bool, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const userColumns = `id, first_name, last_name, email, password_hash, role, status,
	salary, access_level, organization_admin_id, manager_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role, status,
			salary, access_level, organization_admin_id, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.Status,
		u.Salary, u.AccessLevel, u.OrgAdminID, u.ManagerID).Scan(&id)
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *repository) GetByRole(ctx context.Context, id int64, role string) (*User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND role = $2`, id, role)
	return scanUser(row)
}

func (r *repository) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1
		ORDER BY first_name, last_name
	`, role)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (r *repository) ListManagers(ctx context.Context, orgAdminID int64) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1 AND organization_admin_id = $2
		ORDER BY first_name, last_name
	`, shared.RoleManager, orgAdminID)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (r *repository) ListEmployees(ctx context.Context, managerID int64) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = $1 AND manager_id = $2
		ORDER BY first_name, last_name
	`, shared.RoleEmployee, managerID)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE users SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"first_name", "last_name", "email", "password_hash", "salary", "access_level", "status"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return mapPgError(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) RoleExists(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	return exists, err
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var salary pgtype.Float8
	var accessLevel pgtype.Text
	var orgAdmin, manager pgtype.Int8
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&salary, &accessLevel, &orgAdmin, &manager, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if salary.Valid {
		u.Salary = &salary.Float64
	}
	if accessLevel.Valid {
		u.AccessLevel = &accessLevel.String
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

func scanUsers(rows pgx.Rows) ([]User, error) {
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// mapPgError translates unique violations into ErrDuplicate so handlers can
// answer 400 for duplicate emails and the second host admin.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}
