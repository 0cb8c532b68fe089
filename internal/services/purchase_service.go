package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vendora/backend/internal/audit"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// PurchaseService runs one purchase: check the product, take the buyer's whole
// balance, pay back the surplus as coins and take one unit out of stock.
//
// Funds are committed before stock and each step commits on its own record, so no
// lock is ever held across both an account and a product.
type PurchaseService struct {
	ledger        *LedgerService
	catalog       *CatalogService
	denominations *Denominations
	publisher     PurchasePublisher
	audit         *audit.Logger
	logger        *zap.Logger
}

func NewPurchaseService(ledger *LedgerService, catalog *CatalogService, denominations *Denominations, publisher PurchasePublisher, auditLogger *audit.Logger, logger *zap.Logger) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		ledger:        ledger,
		catalog:       catalog,
		denominations: denominations,
		publisher:     publisher,
		audit:         auditLogger,
		logger:        logger.Named("purchase"),
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, productID, buyerID string) (*models.PurchaseResult, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("no product %s available to purchase: %w", productID, ErrProductUnavailable)
		}
		return nil, err
	}
	if product.Deleted {
		return nil, fmt.Errorf("no product %s available to purchase: %w", productID, ErrProductUnavailable)
	}
	if product.Stock == 0 {
		return nil, fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}

	prior, err := s.ledger.Debit(ctx, buyerID, product.Price)
	if err != nil {
		return nil, err
	}
	change := s.denominations.ComputeChange(prior - product.Price)

	updated, err := s.catalog.DecrementStockForPurchase(ctx, productID)
	if err != nil {
		// Another buyer took the last unit (or the seller removed the product) after
		// our stock check; give the money back before reporting the failure.
		if refundErr := s.refund(ctx, buyerID, productID, prior, err); refundErr != nil {
			return nil, errors.Join(err, refundErr)
		}
		return nil, err
	}

	s.audit.LogPurchase(buyerID, productID, product.Price, prior)
	s.publish(ctx, buyerID, updated, product.Price, change)

	return &models.PurchaseResult{
		Product: *updated,
		Change:  change,
		Spent:   product.Price,
	}, nil
}

// refund credits amount back to the buyer. A failed refund is audited and returned;
// the buyer is then owed amount and the audit entry is the record of it.
func (s *PurchaseService) refund(ctx context.Context, buyerID, productID string, amount int64, reason error) error {
	if _, err := s.ledger.Credit(context.WithoutCancel(ctx), buyerID, amount); err != nil {
		refundErr := fmt.Errorf("refund of %d to %s failed: %w", amount, buyerID, err)
		s.audit.LogError(buyerID, productID, refundErr)
		s.logger.Error("refund after failed stock decrement did not complete",
			zap.String("buyer", buyerID),
			zap.String("product_id", productID),
			zap.Int64("amount", amount),
			zap.Error(err))
		return refundErr
	}
	s.audit.LogRefund(buyerID, productID, amount, reason)
	return nil
}

func (s *PurchaseService) publish(ctx context.Context, buyerID string, product *models.Product, price int64, change []int64) {
	if s.publisher == nil {
		return
	}

	event := models.PurchaseEvent{
		ProductID: product.ID,
		Buyer:     buyerID,
		SellerID:  product.OwnerID,
		Price:     price,
		Change:    change,
		Remaining: product.Stock,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishPurchase(ctx, event); err != nil {
		s.logger.Warn("failed to publish purchase event",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}
}
