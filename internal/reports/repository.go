package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-erp/lattice/internal/shared"
)

// Repository runs the report aggregations. All queries are read only.
type Repository interface {
	SalesByProduct(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]ProductSalesRow, error)
	CountOrders(ctx context.Context, orgAdminID int64, start, end time.Time) (int64, error)
	ProfitLossBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]PLRow, error)
	ProfitLossTotals(ctx context.Context, orgAdminID int64, start, end time.Time) (*PLTotals, error)
	RevenueBuckets(ctx context.Context, g Granularity, start, end time.Time) ([]RevenueRow, error)
	RevenueTotals(ctx context.Context, start, end time.Time) (*RevenueTotals, error)
	ManagerTeamBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]TeamRow, error)
	EmployeeTeamBuckets(ctx context.Context, managerID int64, g Granularity, start, end time.Time) ([]TeamRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the postgres backed report repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// SalesByProduct aggregates revenue per product per bucket over completed
// and active orders. Revenue counts each order's grand total once per
// product line, matching the report consumers' expectations.
func (r *repository) SalesByProduct(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]ProductSalesRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc($4, o.created_at) AS bucket,
			i.product_id,
			COALESCE(p.name, '') AS product_name,
			SUM(i.quantity) AS quantity_sold,
			SUM(o.grand_total) AS total_revenue,
			SUM(i.price * i.quantity * i.discount / 100) AS total_discount,
			SUM(o.tax_amount) AS total_tax,
			COUNT(*) AS order_count
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE o.org_admin_id = $1
			AND o.status IN ('Completed', 'Active')
			AND o.created_at >= $2 AND o.created_at < $3
		GROUP BY bucket, i.product_id, p.name
		ORDER BY bucket, product_name
	`, orgAdminID, start, end, g.trunc())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSalesRow
	for rows.Next() {
		var row ProductSalesRow
		err := rows.Scan(&row.Bucket, &row.ProductID, &row.ProductName, &row.QuantitySold,
			&row.TotalRevenue, &row.TotalDiscount, &row.TotalTax, &row.OrderCount)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) CountOrders(ctx context.Context, orgAdminID int64, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE org_admin_id = $1
			AND status IN ('Completed', 'Active')
			AND created_at >= $2 AND created_at < $3
	`, orgAdminID, start, end).Scan(&count)
	return count, err
}

const plAggregates = `
	SUM(o.grand_total) AS total_revenue,
	SUM(i.quantity * (p.price - p.price * p.max_discount / 100)) AS total_cost,
	SUM(i.quantity * (i.price - i.price * i.discount / 100)) AS selling_price,
	SUM(COALESCE(o.tax_amount, 0)) AS total_tax`

const plSource = `
	FROM orders o
	JOIN order_items i ON i.order_id = o.id
	JOIN products p ON p.id = i.product_id
	WHERE o.org_admin_id = $1
		AND o.status = 'Completed'
		AND o.created_at >= $2 AND o.created_at < $3`

func (r *repository) ProfitLossBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]PLRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc($4, o.created_at) AS bucket, `+plAggregates+plSource+`
		GROUP BY bucket
		ORDER BY bucket
	`, orgAdminID, start, end, g.trunc())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PLRow
	for rows.Next() {
		var row PLRow
		err := rows.Scan(&row.Bucket, &row.TotalRevenue, &row.TotalCost, &row.SellingPrice, &row.TotalTax)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) ProfitLossTotals(ctx context.Context, orgAdminID int64, start, end time.Time) (*PLTotals, error) {
	var totals PLTotals
	err := r.db.QueryRow(ctx, `
		SELECT `+plAggregates+plSource,
		orgAdminID, start, end,
	).Scan(&totals.TotalRevenue, &totals.TotalCost, &totals.SellingPrice, &totals.TotalTax)
	if err == pgx.ErrNoRows {
		return &PLTotals{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) RevenueBuckets(ctx context.Context, g Granularity, start, end time.Time) ([]RevenueRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc($3, o.created_at) AS bucket,
			o.org_admin_id,
			COALESCE(u.email, '') AS org_admin_email,
			SUM(o.grand_total) AS total_revenue,
			SUM(o.tax_amount) AS total_tax,
			COUNT(*) AS total_orders
		FROM orders o
		LEFT JOIN users u ON u.id = o.org_admin_id
		WHERE o.status IN ('Completed', 'Active')
			AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY bucket, o.org_admin_id, u.email
		ORDER BY bucket, org_admin_email
	`, start, end, g.trunc())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RevenueRow
	for rows.Next() {
		var row RevenueRow
		err := rows.Scan(&row.Bucket, &row.OrgAdminID, &row.OrgAdminEmail,
			&row.TotalRevenue, &row.TotalTax, &row.TotalOrders)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) RevenueTotals(ctx context.Context, start, end time.Time) (*RevenueTotals, error) {
	var totals RevenueTotals
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(grand_total), 0),
			COUNT(*),
			COALESCE(SUM(tax_amount), 0),
			COUNT(DISTINCT org_admin_id)
		FROM orders
		WHERE status IN ('Completed', 'Active')
			AND created_at >= $1 AND created_at < $2
	`, start, end).Scan(&totals.TotalRevenue, &totals.TotalOrders, &totals.TotalTax, &totals.TotalOrganizations)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// ManagerTeamBuckets attributes completed orders to the manager of the
// employee who raised them, for every manager under the organization.
func (r *repository) ManagerTeamBuckets(ctx context.Context, orgAdminID int64, g Granularity, start, end time.Time) ([]TeamRow, error) {
	return r.teamBuckets(ctx, `
		SELECT date_trunc($4, o.created_at) AS bucket,
			m.id AS person_id,
			m.first_name || ' ' || m.last_name AS person_name,
			SUM(o.grand_total) AS total_revenue,
			COUNT(*) AS total_orders,
			SUM(d.item_discount) AS total_discount,
			SUM(o.tax_amount) AS total_tax
		FROM orders o
		JOIN users e ON e.id = o.created_by
		JOIN users m ON m.id = e.manager_id
		CROSS JOIN LATERAL (
			SELECT COALESCE(SUM(i.price * i.quantity * i.discount / 100), 0) AS item_discount
			FROM order_items i
			WHERE i.order_id = o.id
		) d
		WHERE m.role = '`+shared.RoleManager+`'
			AND m.organization_admin_id = $1
			AND o.status = 'Completed'
			AND o.created_at >= $2 AND o.created_at < $3
		GROUP BY bucket, m.id, m.first_name, m.last_name
		ORDER BY bucket, person_name
	`, orgAdminID, g, start, end)
}

// EmployeeTeamBuckets attributes completed orders to the employees of one
// manager.
func (r *repository) EmployeeTeamBuckets(ctx context.Context, managerID int64, g Granularity, start, end time.Time) ([]TeamRow, error) {
	return r.teamBuckets(ctx, `
		SELECT date_trunc($4, o.created_at) AS bucket,
			e.id AS person_id,
			e.first_name || ' ' || e.last_name AS person_name,
			SUM(o.grand_total) AS total_revenue,
			COUNT(*) AS total_orders,
			SUM(d.item_discount) AS total_discount,
			SUM(o.tax_amount) AS total_tax
		FROM orders o
		JOIN users e ON e.id = o.created_by
		CROSS JOIN LATERAL (
			SELECT COALESCE(SUM(i.price * i.quantity * i.discount / 100), 0) AS item_discount
			FROM order_items i
			WHERE i.order_id = o.id
		) d
		WHERE e.manager_id = $1
			AND o.status = 'Completed'
			AND o.created_at >= $2 AND o.created_at < $3
		GROUP BY bucket, e.id, e.first_name, e.last_name
		ORDER BY bucket, person_name
	`, managerID, g, start, end)
}

func (r *repository) teamBuckets(ctx context.Context, query string, ownerID int64, g Granularity, start, end time.Time) ([]TeamRow, error) {
	rows, err := r.db.Query(ctx, query, ownerID, start, end, g.trunc())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamRow
	for rows.Next() {
		var row TeamRow
		err := rows.Scan(&row.Bucket, &row.PersonID, &row.PersonName,
			&row.TotalRevenue, &row.TotalOrders, &row.TotalDiscount, &row.TotalTax)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
