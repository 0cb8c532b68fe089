package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vendora/backend/internal/database"
	"github.com/vendora/backend/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPurchase(ctx context.Context, event models.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// conflictingAccounts reports a version conflict on every save.
type conflictingAccounts struct {
	*database.MemoryStore
	saves atomic.Int64
}

func (c *conflictingAccounts) SaveAccount(_ context.Context, _ *models.Account) error {
	c.saves.Add(1)
	return models.ErrVersionConflict
}

// racingProducts runs interfere once, right after the first product read, to
// simulate a concurrent writer committing between a read and the following write.
type racingProducts struct {
	*database.MemoryStore
	once      sync.Once
	interfere func()
}

func (r *racingProducts) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := r.MemoryStore.GetProduct(ctx, id)
	r.once.Do(r.interfere)
	return p, err
}

// flakyUsers fails the first failures user inserts.
type flakyUsers struct {
	*database.MemoryStore
	failures int
}

func (f *flakyUsers) CreateUser(ctx context.Context, user *models.User) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("users table unavailable")
	}
	return f.MemoryStore.CreateUser(ctx, user)
}

// failingAccounts lets the first okSaves account saves through and fails the rest.
type failingAccounts struct {
	*database.MemoryStore
	okSaves int64
	saves   atomic.Int64
}

func (f *failingAccounts) SaveAccount(ctx context.Context, account *models.Account) error {
	if f.saves.Add(1) > f.okSaves {
		return errors.New("accounts table unavailable")
	}
	return f.MemoryStore.SaveAccount(ctx, account)
}

func newTestEngine(t *testing.T, publisher PurchasePublisher) (*Engine, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	return NewEngine(store, store, publisher, EngineConfig{}, nil), store
}

func fundedBuyer(t *testing.T, e *Engine, ownerID string, coins ...int64) {
	t.Helper()
	ctx := context.Background()
	_, err := e.RegisterAccount(ctx, ownerID)
	require.NoError(t, err)
	for _, coin := range coins {
		_, err := e.Deposit(ctx, ownerID, coin)
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
