package sales

// CustomerInput identifies the buyer on a quotation.
type CustomerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// ItemInput adds one product line. The discount is a requested percentage
// and may be lowered to the product's cap.
type ItemInput struct {
	ProductID int64   `json:"product" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	Discount  float64 `json:"discount" validate:"gte=0"`
}

// UpdateItemInput rewrites an existing line in place.
type UpdateItemInput struct {
	ID        int64   `json:"_id" validate:"required,gt=0"`
	ProductID int64   `json:"product" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	Discount  float64 `json:"discount" validate:"gte=0"`
}

// CreateQuotationRequest creates a draft quotation with at least one line.
type CreateQuotationRequest struct {
	Customer CustomerInput `json:"customer" validate:"required"`
	Items    []ItemInput   `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuotationRequest edits a draft quotation. Deletions, updates and
// additions are applied together and the total is recomputed over the full
// remaining item list.
type UpdateQuotationRequest struct {
	Customer      CustomerInput     `json:"customer" validate:"required"`
	ItemsToAdd    []ItemInput       `json:"itemsToAdd" validate:"dive"`
	ItemsToUpdate []UpdateItemInput `json:"itemsToUpdate" validate:"dive"`
	ItemsToDelete []int64           `json:"itemsToDelete"`
}

// FinalizeQuotationRequest locks a draft with tax and charges.
type FinalizeQuotationRequest struct {
	TaxRate      float64 `json:"taxRate" validate:"gte=0"`
	ShippingFee  float64 `json:"shippingFee" validate:"gte=0"`
	OtherCharges float64 `json:"otherCharges" validate:"gte=0"`
}

// ConvertQuotationRequest turns a finalized quotation into an order.
type ConvertQuotationRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,oneof='Cash on Delivery' 'Credit Card' 'Debit Card' UPI 'Net Banking' Wallet Other"`
}
