package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lattice-erp/lattice/internal/shared"
)

var (
	errDraftNotFound     = fmt.Errorf("%w: draft quotation not found", shared.ErrNotFound)
	errFinalizedNotFound = fmt.Errorf("%w: finalized quotation not found", shared.ErrNotFound)
	errActiveNotFound    = fmt.Errorf("%w: active order not found", shared.ErrNotFound)
	errNoOrgAdmin        = fmt.Errorf("%w: no organization linked to this account", shared.ErrValidation)
)

// ReportInvalidator flushes cached report payloads after an order-affecting
// mutation. A nil invalidator is a no-op.
type ReportInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements the quotation and order lifecycle.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	reports ReportInvalidator
}

// NewService constructs the sales service.
func NewService(logger *slog.Logger, repo Repository, reports ReportInvalidator) *Service {
	return &Service{logger: logger, repo: repo, reports: reports}
}

func (s *Service) invalidateReports(ctx context.Context) {
	if s.reports != nil {
		s.reports.Invalidate(ctx)
	}
}

// CreateQuotation prices the requested lines against the caller's
// organization catalog and stores a draft. Requested discounts are clamped
// to each product's cap, never rejected.
func (s *Service) CreateQuotation(ctx context.Context, identity *shared.Identity, req CreateQuotationRequest) (*Quotation, error) {
	if identity.OrgAdmin == nil {
		return nil, errNoOrgAdmin
	}
	orgAdminID := *identity.OrgAdmin

	var created *Quotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		items := make([]LineItem, 0, len(req.Items))
		for _, input := range req.Items {
			item, err := s.priceItem(ctx, tx, orgAdminID, input.ProductID, input.Quantity, input.Discount)
			if err != nil {
				return err
			}
			items = append(items, *item)
		}

		id, err := tx.CreateQuotation(ctx, Quotation{
			OrgAdminID:  orgAdminID,
			ManagerID:   identity.ManagerID,
			CreatedBy:   identity.UserID,
			Customer:    Customer(req.Customer),
			Items:       items,
			TotalAmount: sumItems(items),
			Status:      QuotationDraft,
		})
		if err != nil {
			return err
		}
		created, err = tx.GetQuotation(ctx, id, identity.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListQuotations returns the caller's quotations.
func (s *Service) ListQuotations(ctx context.Context, userID int64) ([]Quotation, error) {
	return s.repo.ListQuotations(ctx, userID)
}

// GetQuotation returns one of the caller's quotations.
func (s *Service) GetQuotation(ctx context.Context, userID, id int64) (*Quotation, error) {
	return s.repo.GetQuotation(ctx, id, userID)
}

// UpdateQuotation edits a draft. Deletions, rewrites and additions are
// applied together, then the total is recomputed over the full remaining
// item list so stale lines can never leak into the total.
func (s *Service) UpdateQuotation(ctx context.Context, userID, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	var updated *Quotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetQuotationByStatus(ctx, id, userID, QuotationDraft)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errDraftNotFound
			}
			return err
		}

		if err := tx.DeleteItems(ctx, q.ID, req.ItemsToDelete); err != nil {
			return err
		}

		for _, upd := range req.ItemsToUpdate {
			item, err := s.priceItem(ctx, tx, q.OrgAdminID, upd.ProductID, upd.Quantity, upd.Discount)
			if err != nil {
				return err
			}
			item.ID = upd.ID
			if err := tx.UpdateItem(ctx, q.ID, *item); err != nil {
				// A rewrite aimed at a line deleted in the same request
				// is dropped, matching the delete-then-update order.
				if errors.Is(err, shared.ErrNotFound) {
					continue
				}
				return err
			}
		}

		newItems := make([]LineItem, 0, len(req.ItemsToAdd))
		for _, input := range req.ItemsToAdd {
			item, err := s.priceItem(ctx, tx, q.OrgAdminID, input.ProductID, input.Quantity, input.Discount)
			if err != nil {
				return err
			}
			newItems = append(newItems, *item)
		}
		if err := tx.InsertItems(ctx, q.ID, newItems); err != nil {
			return err
		}

		items, err := tx.ListItems(ctx, q.ID)
		if err != nil {
			return err
		}
		err = tx.UpdateQuotationHeader(ctx, q.ID, map[string]interface{}{
			"customer_name":  req.Customer.Name,
			"customer_email": req.Customer.Email,
			"customer_phone": req.Customer.Phone,
			"total_amount":   sumItems(items),
		})
		if err != nil {
			return err
		}

		updated, err = tx.GetQuotation(ctx, q.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteQuotation removes one of the caller's drafts. Finalized and
// converted quotations cannot be deleted.
func (s *Service) DeleteQuotation(ctx context.Context, userID, id int64) error {
	err := s.repo.DeleteQuotation(ctx, id, userID, QuotationDraft)
	if errors.Is(err, shared.ErrNotFound) {
		return errDraftNotFound
	}
	return err
}

// FinalizeQuotation locks a draft with tax and charges. The subtotal is
// recomputed from the stored lines at this moment.
func (s *Service) FinalizeQuotation(ctx context.Context, userID, id int64, req FinalizeQuotationRequest) (*Quotation, error) {
	var finalized *Quotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetQuotationByStatus(ctx, id, userID, QuotationDraft)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errDraftNotFound
			}
			return err
		}

		subTotal := sumItems(q.Items)
		taxAmount := round2(subTotal * req.TaxRate / 100)
		grandTotal := round2(subTotal + taxAmount + req.ShippingFee + req.OtherCharges)

		err = tx.UpdateQuotationHeader(ctx, q.ID, map[string]interface{}{
			"sub_total":     subTotal,
			"tax_rate":      req.TaxRate,
			"tax_amount":    taxAmount,
			"shipping_fee":  req.ShippingFee,
			"other_charges": req.OtherCharges,
			"grand_total":   grandTotal,
			"status":        QuotationFinalized,
		})
		if err != nil {
			return err
		}

		finalized, err = tx.GetQuotation(ctx, q.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// ConvertQuotation turns a finalized quotation into an active order,
// decrementing stock for every line. The whole conversion is one
// transaction: if any product is short the transaction rolls back and no
// stock moves.
func (s *Service) ConvertQuotation(ctx context.Context, userID, id int64, req ConvertQuotationRequest) (*Order, error) {
	var order *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		q, err := tx.GetQuotationByStatus(ctx, id, userID, QuotationFinalized)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errFinalizedNotFound
			}
			return err
		}

		for _, item := range q.Items {
			ok, err := tx.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: not enough stock for product %s", shared.ErrInsufficientStock, item.ProductName)
			}
		}

		paymentMethod := req.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = PaymentCashOnDelivery
		}
		paymentStatus := PaymentPaid
		if paymentMethod == PaymentCashOnDelivery {
			paymentStatus = PaymentPending
		}

		subTotal := sumItems(q.Items)
		orderID, err := tx.CreateOrder(ctx, Order{
			QuotationID:   q.ID,
			OrgAdminID:    q.OrgAdminID,
			ManagerID:     q.ManagerID,
			CreatedBy:     q.CreatedBy,
			Customer:      q.Customer,
			Items:         q.Items,
			SubTotal:      subTotal,
			TaxRate:       q.TaxRate,
			TaxAmount:     q.TaxAmount,
			ShippingFee:   q.ShippingFee,
			OtherCharges:  q.OtherCharges,
			GrandTotal:    round2(subTotal + q.TaxAmount + q.ShippingFee + q.OtherCharges),
			Status:        OrderActive,
			PaymentStatus: paymentStatus,
			PaymentMethod: paymentMethod,
		})
		if err != nil {
			return err
		}

		err = tx.UpdateQuotationHeader(ctx, q.ID, map[string]interface{}{
			"status": QuotationConverted,
		})
		if err != nil {
			return err
		}

		order, err = tx.GetOrder(ctx, orderID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return order, nil
}

// ListOrders returns the caller's orders.
func (s *Service) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ListOrders(ctx, userID)
}

// GetOrder returns one of the caller's orders.
func (s *Service) GetOrder(ctx context.Context, userID, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id, userID)
}

// CancelOrder cancels an active order and restores its stock. The
// transition is conditional on the Active state, so a second cancel finds
// nothing and restores nothing.
func (s *Service) CancelOrder(ctx context.Context, userID, id int64) (*Order, error) {
	var cancelled *Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		ok, err := tx.TransitionOrder(ctx, id, userID, OrderActive, map[string]interface{}{
			"status": OrderCancelled,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errActiveNotFound
		}

		cancelled, err = tx.GetOrder(ctx, id, userID)
		if err != nil {
			return err
		}
		for _, item := range cancelled.Items {
			if err := tx.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return cancelled, nil
}

// CompleteOrder marks an active order completed and its payment settled.
func (s *Service) CompleteOrder(ctx context.Context, userID, id int64) (*Order, error) {
	ok, err := s.repo.TransitionOrder(ctx, id, userID, OrderActive, map[string]interface{}{
		"status":         OrderCompleted,
		"payment_status": PaymentPaid,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errActiveNotFound
	}
	s.invalidateReports(ctx)
	return s.repo.GetOrder(ctx, id, userID)
}

// DeleteOrder removes an order outright. Stock is not restored; cancel
// first if the goods should return to the shelf.
func (s *Service) DeleteOrder(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteOrder(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// FinalizedQuotationsForManager returns finalized quotations raised by the
// manager's employees.
func (s *Service) FinalizedQuotationsForManager(ctx context.Context, managerID int64) ([]Quotation, error) {
	return s.repo.ListQuotationsByManager(ctx, managerID, QuotationFinalized)
}

// CompletedOrdersForManager returns completed orders raised by the
// manager's employees.
func (s *Service) CompletedOrdersForManager(ctx context.Context, managerID int64) ([]Order, error) {
	return s.repo.ListOrdersByManager(ctx, managerID, OrderCompleted)
}

func (s *Service) priceItem(ctx context.Context, tx Repository, orgAdminID, productID, quantity int64, requestedDiscount float64) (*LineItem, error) {
	product, err := tx.GetSaleProduct(ctx, productID, orgAdminID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %d not found", shared.ErrNotFound, productID)
		}
		return nil, err
	}
	discount := clampDiscount(requestedDiscount, product.MaxDiscount)
	return &LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Price:       product.Price,
		Discount:    discount,
		FinalPrice:  linePrice(product.Price, discount, quantity),
	}, nil
}
