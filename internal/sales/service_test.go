package sales

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattice-erp/lattice/internal/shared"
)

type mockProduct struct {
	SaleProduct
	OwnerID int64
}

type mockRepository struct {
	products   map[int64]*mockProduct
	quotations map[int64]*Quotation
	items      map[int64][]LineItem
	orders     map[int64]*Order
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		products:   make(map[int64]*mockProduct),
		quotations: make(map[int64]*Quotation),
		items:      make(map[int64][]LineItem),
		orders:     make(map[int64]*Order),
		nextID:     1,
	}
}

// WithTx snapshots all state and restores it when fn fails, mirroring a
// rolled back transaction.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	snapshot := m.clone()
	if err := fn(ctx, m); err != nil {
		m.products = snapshot.products
		m.quotations = snapshot.quotations
		m.items = snapshot.items
		m.orders = snapshot.orders
		m.nextID = snapshot.nextID
		return err
	}
	return nil
}

func (m *mockRepository) clone() *mockRepository {
	c := newMockRepository()
	c.nextID = m.nextID
	for id, p := range m.products {
		copied := *p
		c.products[id] = &copied
	}
	for id, q := range m.quotations {
		copied := *q
		c.quotations[id] = &copied
	}
	for id, items := range m.items {
		c.items[id] = append([]LineItem(nil), items...)
	}
	for id, o := range m.orders {
		copied := *o
		copied.Items = append([]LineItem(nil), o.Items...)
		c.orders[id] = &copied
	}
	return c
}

func (m *mockRepository) CreateQuotation(ctx context.Context, q Quotation) (int64, error) {
	id := m.nextID
	m.nextID++
	q.ID = id
	items := q.Items
	q.Items = nil
	m.quotations[id] = &q
	if err := m.InsertItems(ctx, id, items); err != nil {
		return 0, err
	}
	return id, nil
}

func (m *mockRepository) GetQuotation(ctx context.Context, id, createdBy int64) (*Quotation, error) {
	q, ok := m.quotations[id]
	if !ok || q.CreatedBy != createdBy {
		return nil, shared.ErrNotFound
	}
	copied := *q
	copied.Items = append([]LineItem(nil), m.items[id]...)
	return &copied, nil
}

func (m *mockRepository) GetQuotationByStatus(ctx context.Context, id, createdBy int64, status string) (*Quotation, error) {
	q, err := m.GetQuotation(ctx, id, createdBy)
	if err != nil || q.Status != status {
		return nil, shared.ErrNotFound
	}
	return q, nil
}

func (m *mockRepository) ListQuotations(ctx context.Context, createdBy int64) ([]Quotation, error) {
	var out []Quotation
	for id, q := range m.quotations {
		if q.CreatedBy == createdBy {
			copied := *q
			copied.Items = append([]LineItem(nil), m.items[id]...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *mockRepository) ListQuotationsByManager(ctx context.Context, managerID int64, status string) ([]Quotation, error) {
	var out []Quotation
	for id, q := range m.quotations {
		if q.ManagerID != nil && *q.ManagerID == managerID && q.Status == status {
			copied := *q
			copied.Items = append([]LineItem(nil), m.items[id]...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateQuotationHeader(ctx context.Context, id int64, updates map[string]interface{}) error {
	q, ok := m.quotations[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["customer_name"]; ok {
		q.Customer.Name = v.(string)
	}
	if v, ok := updates["customer_email"]; ok {
		q.Customer.Email = v.(string)
	}
	if v, ok := updates["customer_phone"]; ok {
		q.Customer.Phone = v.(string)
	}
	if v, ok := updates["total_amount"]; ok {
		q.TotalAmount = v.(float64)
	}
	if v, ok := updates["sub_total"]; ok {
		q.SubTotal = v.(float64)
	}
	if v, ok := updates["tax_rate"]; ok {
		q.TaxRate = v.(float64)
	}
	if v, ok := updates["tax_amount"]; ok {
		q.TaxAmount = v.(float64)
	}
	if v, ok := updates["shipping_fee"]; ok {
		q.ShippingFee = v.(float64)
	}
	if v, ok := updates["other_charges"]; ok {
		q.OtherCharges = v.(float64)
	}
	if v, ok := updates["grand_total"]; ok {
		q.GrandTotal = v.(float64)
	}
	if v, ok := updates["status"]; ok {
		q.Status = v.(string)
	}
	return nil
}

func (m *mockRepository) DeleteQuotation(ctx context.Context, id, createdBy int64, status string) error {
	q, ok := m.quotations[id]
	if !ok || q.CreatedBy != createdBy || q.Status != status {
		return shared.ErrNotFound
	}
	delete(m.quotations, id)
	delete(m.items, id)
	return nil
}

func (m *mockRepository) ListItems(ctx context.Context, quotationID int64) ([]LineItem, error) {
	return append([]LineItem(nil), m.items[quotationID]...), nil
}

func (m *mockRepository) InsertItems(ctx context.Context, quotationID int64, items []LineItem) error {
	for _, item := range items {
		item.ID = m.nextID
		m.nextID++
		m.items[quotationID] = append(m.items[quotationID], item)
	}
	return nil
}

func (m *mockRepository) UpdateItem(ctx context.Context, quotationID int64, item LineItem) error {
	for i, existing := range m.items[quotationID] {
		if existing.ID == item.ID {
			m.items[quotationID][i] = item
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *mockRepository) DeleteItems(ctx context.Context, quotationID int64, itemIDs []int64) error {
	var kept []LineItem
	for _, item := range m.items[quotationID] {
		remove := false
		for _, id := range itemIDs {
			if item.ID == id {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, item)
		}
	}
	m.items[quotationID] = kept
	return nil
}

func (m *mockRepository) GetSaleProduct(ctx context.Context, productID, orgAdminID int64) (*SaleProduct, error) {
	p, ok := m.products[productID]
	if !ok || p.OwnerID != orgAdminID {
		return nil, shared.ErrNotFound
	}
	copied := p.SaleProduct
	return &copied, nil
}

func (m *mockRepository) DecrementStock(ctx context.Context, productID, quantity int64) (bool, error) {
	p, ok := m.products[productID]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	return true, nil
}

func (m *mockRepository) RestoreStock(ctx context.Context, productID, quantity int64) error {
	if p, ok := m.products[productID]; ok {
		p.Stock += quantity
	}
	return nil
}

func (m *mockRepository) CreateOrder(ctx context.Context, o Order) (int64, error) {
	id := m.nextID
	m.nextID++
	o.ID = id
	o.Items = append([]LineItem(nil), o.Items...)
	m.orders[id] = &o
	return id, nil
}

func (m *mockRepository) GetOrder(ctx context.Context, id, createdBy int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok || o.CreatedBy != createdBy {
		return nil, shared.ErrNotFound
	}
	copied := *o
	copied.Items = append([]LineItem(nil), o.Items...)
	return &copied, nil
}

func (m *mockRepository) ListOrders(ctx context.Context, createdBy int64) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.CreatedBy == createdBy {
			copied := *o
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *mockRepository) ListOrdersByManager(ctx context.Context, managerID int64, status string) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.ManagerID != nil && *o.ManagerID == managerID && o.Status == status {
			copied := *o
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *mockRepository) TransitionOrder(ctx context.Context, id, createdBy int64, from string, updates map[string]interface{}) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.CreatedBy != createdBy || o.Status != from {
		return false, nil
	}
	if v, ok := updates["status"]; ok {
		o.Status = v.(string)
	}
	if v, ok := updates["payment_status"]; ok {
		o.PaymentStatus = v.(string)
	}
	return true, nil
}

func (m *mockRepository) DeleteOrder(ctx context.Context, id, createdBy int64) error {
	o, ok := m.orders[id]
	if !ok || o.CreatedBy != createdBy {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

const (
	orgAdminID = int64(1)
	managerID  = int64(2)
	employeeID = int64(3)
)

func employeeIdentity() *shared.Identity {
	org := orgAdminID
	mgr := managerID
	return &shared.Identity{UserID: employeeID, Role: shared.RoleEmployee, OrgAdmin: &org, ManagerID: &mgr}
}

func fixture() (*Service, *mockRepository) {
	repo := newMockRepository()
	repo.products[10] = &mockProduct{SaleProduct: SaleProduct{ID: 10, Name: "Widget", Price: 100, MaxDiscount: 10, Stock: 5}, OwnerID: orgAdminID}
	repo.products[11] = &mockProduct{SaleProduct: SaleProduct{ID: 11, Name: "Gadget", Price: 50, MaxDiscount: 0, Stock: 2}, OwnerID: orgAdminID}
	return NewService(slog.Default(), repo, nil), repo
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

func draft(t *testing.T, svc *Service, items ...ItemInput) *Quotation {
	t.Helper()
	q, err := svc.CreateQuotation(context.Background(), employeeIdentity(), CreateQuotationRequest{
		Customer: CustomerInput{Name: "Acme Ltd"},
		Items:    items,
	})
	require.NoError(t, err)
	return q
}

func TestCreateQuotationClampsDiscount(t *testing.T) {
	svc, _ := fixture()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 2, Discount: 50})
	require.Len(t, q.Items, 1)

	// Requested 50% is clamped to the product's 10% cap.
	assert.Equal(t, 10.0, q.Items[0].Discount)
	assert.Equal(t, 180.0, q.Items[0].FinalPrice)
	assert.Equal(t, 180.0, q.TotalAmount)
	assert.Equal(t, QuotationDraft, q.Status)
}

func TestCreateQuotationUnknownProduct(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.CreateQuotation(context.Background(), employeeIdentity(), CreateQuotationRequest{
		Customer: CustomerInput{Name: "Acme Ltd"},
		Items:    []ItemInput{{ProductID: 999, Quantity: 1}},
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestCreateQuotationRequiresOrgLink(t *testing.T) {
	svc, _ := fixture()

	identity := &shared.Identity{UserID: employeeID, Role: shared.RoleEmployee}
	_, err := svc.CreateQuotation(context.Background(), identity, CreateQuotationRequest{
		Customer: CustomerInput{Name: "Acme Ltd"},
		Items:    []ItemInput{{ProductID: 10, Quantity: 1}},
	})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestUpdateRecomputesTotalOverFullList(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc,
		ItemInput{ProductID: 10, Quantity: 1},
		ItemInput{ProductID: 11, Quantity: 1},
	)
	assert.Equal(t, 150.0, q.TotalAmount)

	// Rewrite only the first line; the untouched second line must stay in
	// the total.
	updated, err := svc.UpdateQuotation(ctx, employeeID, q.ID, UpdateQuotationRequest{
		Customer: CustomerInput{Name: "Acme Ltd"},
		ItemsToUpdate: []UpdateItemInput{
			{ID: q.Items[0].ID, ProductID: 10, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.TotalAmount)
	assert.Len(t, updated.Items, 2)
}

func TestUpdateAppliesDeletesAndAdds(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc,
		ItemInput{ProductID: 10, Quantity: 1},
		ItemInput{ProductID: 11, Quantity: 1},
	)

	updated, err := svc.UpdateQuotation(ctx, employeeID, q.ID, UpdateQuotationRequest{
		Customer:      CustomerInput{Name: "Acme Ltd"},
		ItemsToDelete: []int64{q.Items[0].ID},
		ItemsToAdd:    []ItemInput{{ProductID: 11, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, 150.0, updated.TotalAmount)
}

func TestUpdateRejectsNonDraft(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateQuotation(ctx, employeeID, q.ID, UpdateQuotationRequest{
		Customer: CustomerInput{Name: "Acme Ltd"},
	})
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	err = svc.DeleteQuotation(ctx, employeeID, q.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestFinalizeComputesTotals(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	// One line of 100 with no discount.
	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})

	finalized, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{
		TaxRate:      10,
		ShippingFee:  5,
		OtherCharges: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, finalized.SubTotal)
	assert.Equal(t, 10.0, finalized.TaxAmount)
	assert.Equal(t, 117.0, finalized.GrandTotal)
	assert.Equal(t, QuotationFinalized, finalized.Status)
}

func TestConvertDecrementsStockAndMovesStatus(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 3})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)

	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	assert.Equal(t, OrderActive, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Equal(t, PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, int64(2), repo.products[10].Stock)

	converted, err := svc.GetQuotation(ctx, employeeID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, QuotationConverted, converted.Status)

	// A second conversion finds no finalized quotation.
	_, err = svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, int64(2), repo.products[10].Stock)
}

func TestConvertPrepaidMethodIsPaid(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)

	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{PaymentMethod: "UPI"})
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, order.PaymentStatus)
}

func TestConvertInsufficientStockLeavesEverythingUntouched(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	// First line fits, second asks for more Gadgets than exist.
	q := draft(t, svc,
		ItemInput{ProductID: 10, Quantity: 3},
		ItemInput{ProductID: 11, Quantity: 5},
	)
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)

	_, err = svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	// Rolled back: no stock moved, quotation still finalized, no order.
	assert.Equal(t, int64(5), repo.products[10].Stock)
	assert.Equal(t, int64(2), repo.products[11].Stock)
	still, err := svc.GetQuotation(ctx, employeeID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, QuotationFinalized, still.Status)
	assert.Empty(t, repo.orders)

	// Retry succeeds after restock.
	repo.products[11].Stock = 10
	_, err = svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.products[10].Stock)
	assert.Equal(t, int64(5), repo.products[11].Stock)
}

func TestCancelRestoresStockOnce(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 3})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)
	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), repo.products[10].Stock)

	cancelled, err := svc.CancelOrder(ctx, employeeID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderCancelled, cancelled.Status)
	assert.Equal(t, int64(5), repo.products[10].Stock)

	// Cancelling again finds no active order and must not restore twice.
	_, err = svc.CancelOrder(ctx, employeeID, order.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, int64(5), repo.products[10].Stock)
}

func TestCompleteSettlesPayment(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)
	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	completed, err := svc.CompleteOrder(ctx, employeeID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderCompleted, completed.Status)
	assert.Equal(t, PaymentPaid, completed.PaymentStatus)

	// A completed order cannot be cancelled.
	_, err = svc.CancelOrder(ctx, employeeID, order.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestDeleteOrderKeepsStock(t *testing.T) {
	svc, repo := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 3})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)
	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, employeeID, order.ID))
	assert.Equal(t, int64(2), repo.products[10].Stock)

	_, err = svc.GetOrder(ctx, employeeID, order.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestOrderMutationsInvalidateReports(t *testing.T) {
	svc, _ := fixture()
	reports := &countingInvalidator{}
	svc.reports = reports
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})
	assert.Equal(t, 0, reports.calls)

	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, reports.calls)

	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, reports.calls)

	_, err = svc.CompleteOrder(ctx, employeeID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reports.calls)

	// Failed transitions leave the cache alone.
	_, err = svc.CancelOrder(ctx, employeeID, order.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, 2, reports.calls)
}

func TestManagerViews(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})
	_, err := svc.FinalizeQuotation(ctx, employeeID, q.ID, FinalizeQuotationRequest{})
	require.NoError(t, err)

	finalized, err := svc.FinalizedQuotationsForManager(ctx, managerID)
	require.NoError(t, err)
	assert.Len(t, finalized, 1)

	order, err := svc.ConvertQuotation(ctx, employeeID, q.ID, ConvertQuotationRequest{})
	require.NoError(t, err)
	_, err = svc.CompleteOrder(ctx, employeeID, order.ID)
	require.NoError(t, err)

	completed, err := svc.CompletedOrdersForManager(ctx, managerID)
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	// After conversion the finalized list is empty again.
	finalized, err = svc.FinalizedQuotationsForManager(ctx, managerID)
	require.NoError(t, err)
	assert.Empty(t, finalized)
}

func TestForeignQuotationBehavesAsAbsent(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	q := draft(t, svc, ItemInput{ProductID: 10, Quantity: 1})

	_, err := svc.GetQuotation(ctx, 99, q.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	_, err = svc.FinalizeQuotation(ctx, 99, q.ID, FinalizeQuotationRequest{})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
