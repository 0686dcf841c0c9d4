package sales

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

// Repository persists quotations, orders and the stock movements between
// them. Reads are scoped by the creating employee (or supervising manager)
// so foreign documents behave as absent.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	CreateQuotation(ctx context.Context, q Quotation) (int64, error)
	GetQuotation(ctx context.Context, id, createdBy int64) (*Quotation, error)
	GetQuotationByStatus(ctx context.Context, id, createdBy int64, status string) (*Quotation, error)
	ListQuotations(ctx context.Context, createdBy int64) ([]Quotation, error)
	ListQuotationsByManager(ctx context.Context, managerID int64, status string) ([]Quotation, error)
	UpdateQuotationHeader(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteQuotation(ctx context.Context, id, createdBy int64, status string) error

	ListItems(ctx context.Context, quotationID int64) ([]LineItem, error)
	InsertItems(ctx context.Context, quotationID int64, items []LineItem) error
	UpdateItem(ctx context.Context, quotationID int64, item LineItem) error
	DeleteItems(ctx context.Context, quotationID int64, itemIDs []int64) error

	GetSaleProduct(ctx context.Context, productID, orgAdminID int64) (*SaleProduct, error)
	DecrementStock(ctx context.Context, productID, quantity int64) (bool, error)
	RestoreStock(ctx context.Context, productID, quantity int64) error

	CreateOrder(ctx context.Context, o Order) (int64, error)
	GetOrder(ctx context.Context, id, createdBy int64) (*Order, error)
	ListOrders(ctx context.Context, createdBy int64) ([]Order, error)
	ListOrdersByManager(ctx context.Context, managerID int64, status string) ([]Order, error)
	TransitionOrder(ctx context.Context, id, createdBy int64, from string, updates map[string]interface{}) (bool, error)
	DeleteOrder(ctx context.Context, id, createdBy int64) error
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

const quotationColumns = `id, org_admin_id, manager_id, created_by,
	customer_name, customer_email, customer_phone,
	total_amount, sub_total, tax_rate, tax_amount, shipping_fee, other_charges, grand_total,
	status, created_at, updated_at`

func (r *repository) CreateQuotation(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (org_admin_id, manager_id, created_by,
			customer_name, customer_email, customer_phone, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, q.OrgAdminID, q.ManagerID, q.CreatedBy,
		q.Customer.Name, q.Customer.Email, q.Customer.Phone, q.TotalAmount, q.Status).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := r.InsertItems(ctx, id, q.Items); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) GetQuotation(ctx context.Context, id, createdBy int64) (*Quotation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE id = $1 AND created_by = $2
	`, id, createdBy)
	q, err := scanQuotation(row)
	if err != nil {
		return nil, err
	}
	q.Items, err = r.ListItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuotationByStatus loads a quotation only when it is in the given
// state. Wrong owner and wrong state are indistinguishable from absence.
func (r *repository) GetQuotationByStatus(ctx context.Context, id, createdBy int64, status string) (*Quotation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE id = $1 AND created_by = $2 AND status = $3
	`, id, createdBy, status)
	q, err := scanQuotation(row)
	if err != nil {
		return nil, err
	}
	q.Items, err = r.ListItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) ListQuotations(ctx context.Context, createdBy int64) ([]Quotation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE created_by = $1
		ORDER BY customer_name, created_at DESC
	`, createdBy)
	if err != nil {
		return nil, err
	}
	return r.collectQuotations(ctx, rows)
}

func (r *repository) ListQuotationsByManager(ctx context.Context, managerID int64, status string) ([]Quotation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+quotationColumns+` FROM quotations
		WHERE manager_id = $1 AND status = $2
		ORDER BY customer_name, created_at DESC
	`, managerID, status)
	if err != nil {
		return nil, err
	}
	return r.collectQuotations(ctx, rows)
}

func (r *repository) UpdateQuotationHeader(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	cols := []string{"customer_name", "customer_email", "customer_phone",
		"total_amount", "sub_total", "tax_rate", "tax_amount",
		"shipping_fee", "other_charges", "grand_total", "status"}
	for _, col := range cols {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) DeleteQuotation(ctx context.Context, id, createdBy int64, status string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM quotations WHERE id = $1 AND created_by = $2 AND status = $3
	`, id, createdBy, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const itemColumns = `i.id, i.product_id, COALESCE(p.name, ''), i.quantity, i.price, i.discount, i.final_price`

func (r *repository) ListItems(ctx context.Context, quotationID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM quotation_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.quotation_id = $1
		ORDER BY i.id
	`, quotationID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *repository) InsertItems(ctx context.Context, quotationID int64, items []LineItem) error {
	for _, item := range items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO quotation_items (quotation_id, product_id, quantity, price, discount, final_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, quotationID, item.ProductID, item.Quantity, item.Price, item.Discount, item.FinalPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) UpdateItem(ctx context.Context, quotationID int64, item LineItem) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotation_items
		SET product_id = $3, quantity = $4, price = $5, discount = $6, final_price = $7
		WHERE id = $1 AND quotation_id = $2
	`, item.ID, quotationID, item.ProductID, item.Quantity, item.Price, item.Discount, item.FinalPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		DELETE FROM quotation_items WHERE quotation_id = $1 AND id = ANY($2)
	`, quotationID, itemIDs)
	return err
}

// GetSaleProduct loads the pricing projection of a product in the given
// organization's catalog.
func (r *repository) GetSaleProduct(ctx context.Context, productID, orgAdminID int64) (*SaleProduct, error) {
	var p SaleProduct
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, max_discount, stock FROM products
		WHERE id = $1 AND created_by = $2
	`, productID, orgAdminID).Scan(&p.ID, &p.Name, &p.Price, &p.MaxDiscount, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DecrementStock takes quantity units off the shelf, refusing to go
// negative. The stock guard in the predicate makes concurrent conversions
// serialize correctly.
func (r *repository) DecrementStock(ctx context.Context, productID, quantity int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) RestoreStock(ctx context.Context, productID, quantity int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`, productID, quantity)
	return err
}

const orderColumns = `id, quotation_id, org_admin_id, manager_id, created_by,
	customer_name, customer_email, customer_phone,
	sub_total, tax_rate, tax_amount, shipping_fee, other_charges, grand_total,
	status, payment_status, payment_method, created_at, updated_at`

func (r *repository) CreateOrder(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (quotation_id, org_admin_id, manager_id, created_by,
			customer_name, customer_email, customer_phone,
			sub_total, tax_rate, tax_amount, shipping_fee, other_charges, grand_total,
			status, payment_status, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, o.QuotationID, o.OrgAdminID, o.ManagerID, o.CreatedBy,
		o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.SubTotal, o.TaxRate, o.TaxAmount, o.ShippingFee, o.OtherCharges, o.GrandTotal,
		o.Status, o.PaymentStatus, o.PaymentMethod).Scan(&id)
	if err != nil {
		return 0, err
	}
	for _, item := range o.Items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price, discount, final_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, item.ProductID, item.Quantity, item.Price, item.Discount, item.FinalPrice)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *repository) GetOrder(ctx context.Context, id, createdBy int64) (*Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE id = $1 AND created_by = $2
	`, id, createdBy)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListOrders(ctx context.Context, createdBy int64) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE created_by = $1
		ORDER BY customer_name, created_at DESC
	`, createdBy)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(ctx, rows)
}

func (r *repository) ListOrdersByManager(ctx context.Context, managerID int64, status string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE manager_id = $1 AND status = $2
		ORDER BY customer_name, created_at DESC
	`, managerID, status)
	if err != nil {
		return nil, err
	}
	return r.collectOrders(ctx, rows)
}

// TransitionOrder applies updates only while the order is still in the
// from state, so concurrent transitions cannot double-apply.
func (r *repository) TransitionOrder(ctx context.Context, id, createdBy int64, from string, updates map[string]interface{}) (bool, error) {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"status", "payment_status"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d AND created_by = $%d AND status = $%d", argPos, argPos+1, argPos+2)
	args = append(args, id, createdBy, from)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) DeleteOrder(ctx context.Context, id, createdBy int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM orders WHERE id = $1 AND created_by = $2
	`, id, createdBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) listOrderItems(ctx context.Context, orderID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *repository) collectQuotations(ctx context.Context, rows pgx.Rows) ([]Quotation, error) {
	defer rows.Close()
	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range quotations {
		items, err := r.ListItems(ctx, quotations[i].ID)
		if err != nil {
			return nil, err
		}
		quotations[i].Items = items
	}
	return quotations, nil
}

func (r *repository) collectOrders(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.listOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var managerID pgtype.Int8
	var email, phone pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&q.ID, &q.OrgAdminID, &managerID, &q.CreatedBy,
		&q.Customer.Name, &email, &phone,
		&q.TotalAmount, &q.SubTotal, &q.TaxRate, &q.TaxAmount,
		&q.ShippingFee, &q.OtherCharges, &q.GrandTotal,
		&q.Status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if managerID.Valid {
		q.ManagerID = &managerID.Int64
	}
	q.Customer.Email = email.String
	q.Customer.Phone = phone.String
	q.CreatedAt = createdAt.Time
	q.UpdatedAt = updatedAt.Time
	return &q, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var managerID pgtype.Int8
	var email, phone pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(
		&o.ID, &o.QuotationID, &o.OrgAdminID, &managerID, &o.CreatedBy,
		&o.Customer.Name, &email, &phone,
		&o.SubTotal, &o.TaxRate, &o.TaxAmount, &o.ShippingFee, &o.OtherCharges, &o.GrandTotal,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if managerID.Valid {
		o.ManagerID = &managerID.Int64
	}
	o.Customer.Email = email.String
	o.Customer.Phone = phone.String
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return &o, nil
}

func collectItems(rows pgx.Rows) ([]LineItem, error) {
	defer rows.Close()
	var items []LineItem
	for rows.Next() {
		var item LineItem
		err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &item.Discount, &item.FinalPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
