package catalog

// CreateCategoryRequest creates a category owned by the caller.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest replaces a category's name and description.
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// CreateProductRequest creates a product. The initial stock seeds both the
// sellable and the lifetime stock counters.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Stock       int64   `json:"stock" validate:"gte=0"`
	CategoryID  int64   `json:"categoryId" validate:"required,gt=0"`
	MaxDiscount float64 `json:"maxDiscount"`
	Image       *string `json:"image,omitempty"`
}

// UpdateProductRequest carries optional product updates; nil fields are
// left untouched. Stock is adjusted through the dedicated stock endpoints.
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CategoryID  *int64   `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	MaxDiscount *float64 `json:"maxDiscount,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// StockRequest adjusts a product's stock by a positive quantity.
type StockRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}
