// Package catalog manages the product and category catalog owned by
// organization admins and browsed by their employees.
package catalog

import "time"

// Category groups products. Names are unique per owning organization admin.
type Category struct {
	ID          int64     `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product is a catalog item. Stock is the sellable quantity; TotalStock
// tracks lifetime intake and is what revenue reporting measures against.
// MaxDiscount caps the percentage discount a quotation line may apply.
type Product struct {
	ID          int64     `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int64     `json:"stock"`
	TotalStock  int64     `json:"totalStock"`
	Image       *string   `json:"image"`
	CategoryID  int64     `json:"categoryId"`
	Category    *Category `json:"category,omitempty"`
	CreatedBy   int64     `json:"createdBy"`
	MaxDiscount float64   `json:"maxDiscount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
