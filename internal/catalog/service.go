package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/lattice-erp/lattice/internal/shared"
)

var (
	errCategoryExists = fmt.Errorf("%w: category already exists", shared.ErrDuplicate)
	errDiscountRange  = fmt.Errorf("%w: maxDiscount must be between 0 and 100", shared.ErrValidation)
)

// Service implements catalog operations scoped to the owning organization
// admin.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

// NewService constructs the catalog service.
func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// CreateCategory creates a category; duplicate names per owner fail.
func (s *Service) CreateCategory(ctx context.Context, ownerID int64, req CreateCategoryRequest) (*Category, error) {
	created, err := s.repo.CreateCategory(ctx, Category{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   ownerID,
	})
	if err != nil {
		return nil, mapCategoryDuplicate(err)
	}
	return created, nil
}

// ListCategories returns the caller's categories sorted by name.
func (s *Service) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	return s.repo.ListCategories(ctx, ownerID)
}

// GetCategory returns one of the caller's categories.
func (s *Service) GetCategory(ctx context.Context, ownerID, id int64) (*Category, error) {
	return s.repo.GetCategory(ctx, id, ownerID)
}

// UpdateCategory replaces a category's name and description.
func (s *Service) UpdateCategory(ctx context.Context, ownerID, id int64, req UpdateCategoryRequest) (*Category, error) {
	updated, err := s.repo.UpdateCategory(ctx, id, ownerID, req.Name, req.Description)
	if err != nil {
		return nil, mapCategoryDuplicate(err)
	}
	return updated, nil
}

// DeleteCategory removes one of the caller's categories.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteCategory(ctx, id, ownerID)
}

// CreateProduct creates a product. Price is rounded to cents and the
// initial stock seeds both counters.
func (s *Service) CreateProduct(ctx context.Context, ownerID int64, req CreateProductRequest) (*Product, error) {
	if req.MaxDiscount < 0 || req.MaxDiscount > 100 {
		return nil, errDiscountRange
	}
	if _, err := s.repo.GetCategory(ctx, req.CategoryID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.CreateProduct(ctx, Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       round2(req.Price),
		Stock:       req.Stock,
		TotalStock:  req.Stock,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
		CreatedBy:   ownerID,
		MaxDiscount: req.MaxDiscount,
	})
}

// ListProducts returns the owner's products sorted by name.
func (s *Service) ListProducts(ctx context.Context, ownerID int64) ([]Product, error) {
	return s.repo.ListProducts(ctx, ownerID)
}

// GetProduct returns one of the owner's products.
func (s *Service) GetProduct(ctx context.Context, ownerID, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id, ownerID)
}

// UpdateProduct applies a partial product update.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, id int64, req UpdateProductRequest) (*Product, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = round2(*req.Price)
	}
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.CategoryID, ownerID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.MaxDiscount != nil {
		if *req.MaxDiscount < 0 || *req.MaxDiscount > 100 {
			return nil, errDiscountRange
		}
		updates["max_discount"] = *req.MaxDiscount
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, id, ownerID, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.GetProduct(ctx, id, ownerID)
}

// DeleteProduct removes one of the owner's products.
func (s *Service) DeleteProduct(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteProduct(ctx, id, ownerID)
}

// AddStock raises the product's sellable and lifetime stock.
func (s *Service) AddStock(ctx context.Context, ownerID, id, quantity int64) (*Product, error) {
	return s.repo.AddStock(ctx, id, ownerID, quantity)
}

// RemoveStock lowers the product's stock, clamped to what is available.
func (s *Service) RemoveStock(ctx context.Context, ownerID, id, quantity int64) (*Product, error) {
	return s.repo.RemoveStock(ctx, id, ownerID, quantity)
}

// BrowseProducts returns the catalog visible to an employee, which is the
// catalog of the organization admin at the top of the employee's chain.
func (s *Service) BrowseProducts(ctx context.Context, orgAdminID *int64) ([]Product, error) {
	if orgAdminID == nil {
		return nil, fmt.Errorf("%w: no organization linked to this account", shared.ErrNotFound)
	}
	return s.repo.ListProducts(ctx, *orgAdminID)
}

func mapCategoryDuplicate(err error) error {
	if err == shared.ErrDuplicate {
		return errCategoryExists
	}
	return err
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
