// Package sales implements the quotation lifecycle and the orders produced
// from it. A quotation moves Draft -> Finalized -> ConvertedToOrder; the
// conversion decrements product stock and creates an Active order.
package sales

import "time"

// Quotation statuses.
const (
	QuotationDraft     = "Draft"
	QuotationFinalized = "Finalized"
	QuotationConverted = "ConvertedToOrder"
)

// Order statuses.
const (
	OrderActive    = "Active"
	OrderCancelled = "Cancelled"
	OrderCompleted = "Completed"
)

// Payment statuses.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

// PaymentCashOnDelivery is the default payment method and the only one that
// leaves an order's payment pending.
const PaymentCashOnDelivery = "Cash on Delivery"

// Customer is the buyer recorded on a quotation, denormalized onto the
// order at conversion time.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LineItem is one product line. Price is the product's unit price captured
// when the line was written; Discount is the applied percentage after
// clamping to the product's cap; FinalPrice is the discounted line total.
type LineItem struct {
	ID          int64   `json:"_id"`
	ProductID   int64   `json:"product"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	FinalPrice  float64 `json:"finalPrice"`
}

// Quotation is a priced offer to a customer. Tax, fees and the grand total
// are zero until the quotation is finalized.
type Quotation struct {
	ID           int64      `json:"_id"`
	OrgAdminID   int64      `json:"organizationAdminId"`
	ManagerID    *int64     `json:"managerId,omitempty"`
	CreatedBy    int64      `json:"createdBy"`
	Customer     Customer   `json:"customer"`
	Items        []LineItem `json:"items"`
	TotalAmount  float64    `json:"totalAmount"`
	SubTotal     float64    `json:"subTotal"`
	TaxRate      float64    `json:"taxRate"`
	TaxAmount    float64    `json:"taxAmount"`
	ShippingFee  float64    `json:"shippingFee"`
	OtherCharges float64    `json:"otherCharges"`
	GrandTotal   float64    `json:"grandTotal"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Order is a converted quotation with its own fulfilment and payment state.
type Order struct {
	ID            int64      `json:"_id"`
	QuotationID   int64      `json:"quotationId"`
	OrgAdminID    int64      `json:"organizationAdminId"`
	ManagerID     *int64     `json:"managerId,omitempty"`
	CreatedBy     int64      `json:"createdBy"`
	Customer      Customer   `json:"customer"`
	Items         []LineItem `json:"items"`
	SubTotal      float64    `json:"subTotal"`
	TaxRate       float64    `json:"taxRate"`
	TaxAmount     float64    `json:"taxAmount"`
	ShippingFee   float64    `json:"shippingFee"`
	OtherCharges  float64    `json:"otherCharges"`
	GrandTotal    float64    `json:"grandTotal"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentMethod string     `json:"paymentMethod"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SaleProduct is the product projection needed to price a quotation line
// and to convert it into an order.
type SaleProduct struct {
	ID          int64
	Name        string
	Price       float64
	MaxDiscount float64
	Stock       int64
}
