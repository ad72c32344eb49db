package service

import (
	"context"
	"errors"

	"github.com/keymint/keymint-api/internal/domain/product"
	"github.com/keymint/keymint-api/internal/ierr"
	"go.uber.org/zap"
)

// UnknownProductName is returned for dangling product references; keys that
// outlive their product keep working but display this placeholder.
const UnknownProductName = "Unknown"

type ProductService struct {
	repo   product.Repository
	logger *zap.Logger
}

func NewProductService(repo product.Repository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger.Named("ProductService"),
	}
}

// CreateProduct registers a new product. The name doubles as the product id.
func (s *ProductService) CreateProduct(ctx context.Context, name string) (string, error) {
	err := s.repo.Create(ctx, &product.Product{ID: name, Name: name})
	if err != nil {
		if errors.Is(err, ierr.ErrAlreadyExists) {
			s.logger.Info("Product already exists", zap.String("name", name))
			return "", err
		}
		s.logger.Error("Failed to create product via repository", zap.String("name", name), zap.Error(err))
		return "", err
	}

	s.logger.Info("Product created successfully", zap.String("product_id", name))
	return name, nil
}

// DeleteProduct removes a product. Keys referencing it are deliberately left
// in place; they resolve to the "Unknown" display name afterwards.
func (s *ProductService) DeleteProduct(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, ierr.ErrProductNotFound) {
			s.logger.Info("Product not found for deletion", zap.String("name", name))
			return err
		}
		s.logger.Error("Failed to delete product via repository", zap.String("name", name), zap.Error(err))
		return err
	}

	s.logger.Info("Product deleted successfully", zap.String("product_id", name))
	return nil
}

// ResolveName returns the display name for a product id, or "Unknown" when
// the product no longer exists. It never fails.
func (s *ProductService) ResolveName(ctx context.Context, productID string) string {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		if !errors.Is(err, ierr.ErrProductNotFound) {
			s.logger.Warn("Failed to resolve product name", zap.String("product_id", productID), zap.Error(err))
		}
		return UnknownProductName
	}
	return p.Name
}

// Exists reports whether a product id is currently registered.
func (s *ProductService) Exists(ctx context.Context, productID string) (bool, error) {
	_, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, ierr.ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
