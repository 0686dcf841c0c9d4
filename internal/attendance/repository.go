package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Repository persists attendance records. The (user_id, day) pair is unique
// so marking and upserting are single conflict-aware statements.
type Repository interface {
	MarkDay(ctx context.Context, userID int64, day time.Time, status string) (bool, error)
	Upsert(ctx context.Context, userID int64, day time.Time, status string) error
	HasRecord(ctx context.Context, userID int64, day time.Time) (bool, error)
	List(ctx context.Context, userID int64) ([]Record, error)
	CountPresent(ctx context.Context, userID int64, from, to *time.Time) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// MarkDay inserts a record for the day if none exists yet. Returns false
// when the day was already marked; the unique index makes concurrent marks
// collapse to a single row.
func (r *repository) MarkDay(ctx context.Context, userID int64, day time.Time, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO attendance (user_id, day, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO NOTHING
	`, userID, truncateDay(day), status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert inserts or overwrites the record for the day.
func (r *repository) Upsert(ctx context.Context, userID int64, day time.Time, status string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendance (user_id, day, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	`, userID, truncateDay(day), status)
	return err
}

func (r *repository) HasRecord(ctx context.Context, userID int64, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM attendance WHERE user_id = $1 AND day = $2)
	`, userID, truncateDay(day)).Scan(&exists)
	return exists, err
}

// List returns all records for the user, newest day first.
func (r *repository) List(ctx context.Context, userID int64) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, day, status, created_at, updated_at
		FROM attendance
		WHERE user_id = $1
		ORDER BY day DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountPresent counts Present records, restricted to [from, to] when both
// bounds are set.
func (r *repository) CountPresent(ctx context.Context, userID int64, from, to *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM attendance WHERE user_id = $1 AND status = $2`
	args := []interface{}{userID, StatusPresent}
	if from != nil && to != nil {
		query += ` AND day >= $3 AND day <= $4`
		args = append(args, truncateDay(*from), truncateDay(*to))
	}

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var day pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&rec.ID, &rec.UserID, &day, &rec.Status, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	rec.Day = day.Time
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return &rec, nil
}
