package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vendora/backend/internal/audit"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// CatalogService owns products. Writes through the public path are restricted to the
// owning seller; soft-deleted products stay readable by id but are otherwise terminal.
type CatalogService struct {
	products      ProductRepository
	denominations *Denominations
	retry         conflictRetrier
	audit         *audit.Logger
	logger        *zap.Logger
}

func NewCatalogService(products ProductRepository, denominations *Denominations, maxRetries int, auditLogger *audit.Logger, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		products:      products,
		denominations: denominations,
		retry:         newConflictRetrier(maxRetries),
		audit:         auditLogger,
		logger:        logger.Named("catalog"),
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, name string, price, stock int64, ownerID string) (*models.Product, error) {
	if err := s.validateName(name); err != nil {
		return nil, err
	}
	if err := s.validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(stock); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Price:     price,
		Stock:     stock,
		OwnerID:   ownerID,
		Deleted:   false,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.audit.LogProduct(audit.EventProductCreate, ownerID, product.ID)
	return product, nil
}

// UpdateProduct applies the non-nil fields of patch. A missing, deleted or foreign
// product is reported as ErrNotFound in every case.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, requesterID string) (*models.Product, error) {
	product, err := s.mutate(ctx, id, func(p *models.Product) error {
		if err := checkWritable(p, requesterID); err != nil {
			return err
		}
		if patch.Name != nil {
			if err := s.validateName(*patch.Name); err != nil {
				return err
			}
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Price != nil {
			if err := s.validatePrice(*patch.Price); err != nil {
				return err
			}
			p.Price = *patch.Price
		}
		if patch.Stock != nil {
			if err := validateStock(*patch.Stock); err != nil {
				return err
			}
			p.Stock = *patch.Stock
		}
		return nil
	})
	if err != nil {
		return nil, ownedProductError(id, requesterID, err)
	}

	s.audit.LogProduct(audit.EventProductUpdate, requesterID, id)
	return product, nil
}

// SoftDeleteProduct marks the product deleted. Deleting twice reports ErrNotFound.
func (s *CatalogService) SoftDeleteProduct(ctx context.Context, id, requesterID string) error {
	_, err := s.mutate(ctx, id, func(p *models.Product) error {
		if err := checkWritable(p, requesterID); err != nil {
			return err
		}
		p.Deleted = true
		return nil
	})
	if err != nil {
		return ownedProductError(id, requesterID, err)
	}

	s.audit.LogProduct(audit.EventProductDelete, requesterID, id)
	return nil
}

// FindProduct returns the product by id, soft-deleted ones included.
func (s *CatalogService) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, fmt.Errorf("no product with id %s was found: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

// DecrementStockForPurchase takes one unit out of stock.
func (s *CatalogService) DecrementStockForPurchase(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.mutate(ctx, id, func(p *models.Product) error {
		if p.Deleted {
			return fmt.Errorf("no product %s available to purchase: %w", id, ErrProductUnavailable)
		}
		if p.Stock == 0 {
			return fmt.Errorf("product %s: %w", id, ErrOutOfStock)
		}
		p.Stock--
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, fmt.Errorf("no product %s available to purchase: %w", id, ErrProductUnavailable)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) mutate(ctx context.Context, id string, apply func(*models.Product) error) (*models.Product, error) {
	var updated *models.Product

	err := s.retry.do(ctx, func() error {
		product, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(product); err != nil {
			return err
		}
		if product.Stock < 0 {
			panic(fmt.Sprintf("catalog: stock of %s would become %d", id, product.Stock))
		}

		product.UpdatedAt = time.Now().UTC()
		if err := s.products.SaveProduct(ctx, product); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				s.logger.Debug("product version conflict, retrying", zap.String("product_id", id))
			}
			return err
		}
		updated = product
		return nil
	})
	return updated, err
}

func (s *CatalogService) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is mandatory", ErrInvalidProduct)
	}
	return nil
}

func (s *CatalogService) validatePrice(price int64) error {
	if price <= 0 {
		return fmt.Errorf("%w: cost must be greater than 0", ErrInvalidProduct)
	}
	if unit := s.denominations.Smallest(); price%unit != 0 {
		return fmt.Errorf("%w: cost must be a multiple of %d", ErrInvalidProduct, unit)
	}
	return nil
}

func validateStock(stock int64) error {
	if stock < 0 {
		return fmt.Errorf("%w: amount available can not be less than 0", ErrInvalidProduct)
	}
	return nil
}

func checkWritable(p *models.Product, requesterID string) error {
	if p.Deleted || !strings.EqualFold(p.OwnerID, requesterID) {
		return models.ErrRecordNotFound
	}
	return nil
}

func ownedProductError(id, requesterID string, err error) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		return fmt.Errorf("no product with id %s exists for seller %s: %w", id, requesterID, ErrNotFound)
	}
	return err
}
