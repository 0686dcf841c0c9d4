package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Repository persists categories and products. Every read and write is
// scoped by the owning organization admin so foreign rows behave as absent.
type Repository interface {
	CreateCategory(ctx context.Context, c Category) (*Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]Category, error)
	GetCategory(ctx context.Context, id, ownerID int64) (*Category, error)
	UpdateCategory(ctx context.Context, id, ownerID int64, name, description string) (*Category, error)
	DeleteCategory(ctx context.Context, id, ownerID int64) error

	CreateProduct(ctx context.Context, p Product) (*Product, error)
	ListProducts(ctx context.Context, ownerID int64) ([]Product, error)
	GetProduct(ctx context.Context, id, ownerID int64) (*Product, error)
	UpdateProduct(ctx context.Context, id, ownerID int64, updates map[string]interface{}) error
	DeleteProduct(ctx context.Context, id, ownerID int64) error
	AddStock(ctx context.Context, id, ownerID, quantity int64) (*Product, error)
	RemoveStock(ctx context.Context, id, ownerID, quantity int64) (*Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const categoryColumns = `id, name, description, created_by, created_at, updated_at`

func (r *repository) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns+`
	`, c.Name, c.Description, c.CreatedBy)
	created, err := scanCategory(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return created, nil
}

func (r *repository) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE created_by = $1
		ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *repository) GetCategory(ctx context.Context, id, ownerID int64) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND created_by = $2
	`, id, ownerID)
	return scanCategory(row)
}

func (r *repository) UpdateCategory(ctx context.Context, id, ownerID int64, name, description string) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $3, description = $4, updated_at = NOW()
		WHERE id = $1 AND created_by = $2
		RETURNING `+categoryColumns+`
	`, id, ownerID, name, description)
	updated, err := scanCategory(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return updated, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM categories WHERE id = $1 AND created_by = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.total_stock,
	p.image, p.category_id, p.created_by, p.max_discount, p.created_at, p.updated_at,
	c.id, c.name, c.description, c.created_by, c.created_at, c.updated_at`

const productJoin = `FROM products p JOIN categories c ON c.id = p.category_id`

func (r *repository) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock, total_stock, image, category_id, created_by, max_discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, p.Name, p.Description, p.Price, p.Stock, p.TotalStock, p.Image, p.CategoryID, p.CreatedBy, p.MaxDiscount).Scan(&id)
	if err != nil {
		return nil, mapPgError(err)
	}
	return r.GetProduct(ctx, id, p.CreatedBy)
}

func (r *repository) ListProducts(ctx context.Context, ownerID int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+` `+productJoin+`
		WHERE p.created_by = $1
		ORDER BY p.name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, id, ownerID int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+` `+productJoin+`
		WHERE p.id = $1 AND p.created_by = $2
	`, id, ownerID)
	return scanProduct(row)
}

func (r *repository) UpdateProduct(ctx context.Context, id, ownerID int64, updates map[string]interface{}) error {
	query := "UPDATE products SET updated_at = NOW()"
	args := []interface{}{id, ownerID}
	argPos := 3

	for _, col := range []string{"name", "description", "price", "category_id", "max_discount", "image"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += " WHERE id = $1 AND created_by = $2"
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id, ownerID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM products WHERE id = $1 AND created_by = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddStock raises both stock counters in one statement.
func (r *repository) AddStock(ctx context.Context, id, ownerID, quantity int64) (*Product, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET stock = stock + $3, total_stock = total_stock + $3, updated_at = NOW()
		WHERE id = $1 AND created_by = $2
	`, id, ownerID, quantity)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetProduct(ctx, id, ownerID)
}

// RemoveStock lowers both stock counters, clamped to the available stock.
// The clamp reads the row's current value inside the statement so a
// concurrent removal cannot drive stock negative.
func (r *repository) RemoveStock(ctx context.Context, id, ownerID, quantity int64) (*Product, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET stock = stock - LEAST($3, stock),
		    total_stock = total_stock - LEAST($3, stock),
		    updated_at = NOW()
		WHERE id = $1 AND created_by = $2
	`, id, ownerID, quantity)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetProduct(ctx, id, ownerID)
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	var description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &description, &c.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	c.Description = description.String
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var c Category
	var pDesc, cDesc pgtype.Text
	var image pgtype.Text
	var pCreated, pUpdated, cCreated, cUpdated pgtype.Timestamptz
	err := row.Scan(
		&p.ID, &p.Name, &pDesc, &p.Price, &p.Stock, &p.TotalStock,
		&image, &p.CategoryID, &p.CreatedBy, &p.MaxDiscount, &pCreated, &pUpdated,
		&c.ID, &c.Name, &cDesc, &c.CreatedBy, &cCreated, &cUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	p.Description = pDesc.String
	if image.Valid {
		p.Image = &image.String
	}
	p.CreatedAt = pCreated.Time
	p.UpdatedAt = pUpdated.Time
	c.Description = cDesc.String
	c.CreatedAt = cCreated.Time
	c.UpdatedAt = cUpdated.Time
	p.Category = &c
	return &p, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}
	return err
}
