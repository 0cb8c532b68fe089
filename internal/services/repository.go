package services

import (
	"context"

	"github.com/vendora/backend/internal/models"
)

// AccountRepository persists buyer accounts. SaveAccount is a compare-and-swap on
// Version: it fails with models.ErrVersionConflict when the stored version differs, and
// on success increments Version on the passed account.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, ownerID string) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
}

// ProductRepository persists products with the same compare-and-swap contract as
// AccountRepository.
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PurchasePublisher receives committed purchases, e.g. for downstream reporting.
type PurchasePublisher interface {
	PublishPurchase(ctx context.Context, event models.PurchaseEvent) error
}
