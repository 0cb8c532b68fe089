package services

import (
	"context"

	"github.com/vendora/backend/internal/audit"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// EngineConfig carries the startup settings of the transaction engine.
type EngineConfig struct {
	Denominations      *Denominations
	MaxConflictRetries int
}

// Engine is the set of operations offered to the request-handling layer. Identities
// are already authenticated and role checks already done by the caller; the engine
// only checks product ownership.
type Engine struct {
	Ledger        *LedgerService
	Catalog       *CatalogService
	Purchases     *PurchaseService
	Denominations *Denominations
}

func NewEngine(accounts AccountRepository, products ProductRepository, publisher PurchasePublisher, cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	denominations := cfg.Denominations
	if denominations == nil {
		denominations = DefaultDenominations()
	}

	auditLogger := audit.NewLogger(logger)
	ledger := NewLedgerService(accounts, denominations, cfg.MaxConflictRetries, auditLogger, logger)
	catalog := NewCatalogService(products, denominations, cfg.MaxConflictRetries, auditLogger, logger)

	return &Engine{
		Ledger:        ledger,
		Catalog:       catalog,
		Purchases:     NewPurchaseService(ledger, catalog, denominations, publisher, auditLogger, logger),
		Denominations: denominations,
	}
}

func (e *Engine) RegisterAccount(ctx context.Context, ownerID string) (*models.Account, error) {
	return e.Ledger.RegisterAccount(ctx, ownerID)
}

func (e *Engine) GetAccount(ctx context.Context, ownerID string) (*models.Account, error) {
	return e.Ledger.GetAccount(ctx, ownerID)
}

func (e *Engine) Deposit(ctx context.Context, ownerID string, amount int64) (*models.Account, error) {
	return e.Ledger.Deposit(ctx, ownerID, amount)
}

func (e *Engine) ResetDeposit(ctx context.Context, ownerID string) (*models.Account, error) {
	return e.Ledger.ResetDeposit(ctx, ownerID)
}

func (e *Engine) CreateProduct(ctx context.Context, name string, price, stock int64, ownerID string) (*models.Product, error) {
	return e.Catalog.CreateProduct(ctx, name, price, stock, ownerID)
}

func (e *Engine) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch, requesterID string) (*models.Product, error) {
	return e.Catalog.UpdateProduct(ctx, id, patch, requesterID)
}

func (e *Engine) SoftDeleteProduct(ctx context.Context, id, requesterID string) error {
	return e.Catalog.SoftDeleteProduct(ctx, id, requesterID)
}

func (e *Engine) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	return e.Catalog.FindProduct(ctx, id)
}

func (e *Engine) Purchase(ctx context.Context, productID, buyerID string) (*models.PurchaseResult, error) {
	return e.Purchases.Purchase(ctx, productID, buyerID)
}
