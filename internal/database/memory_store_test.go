package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/backend/internal/models"
)

func TestMemoryStore_Account(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateAccount(ctx, &models.Account{OwnerID: "alice", Version: 1}))
	assert.ErrorIs(t, store.CreateAccount(ctx, &models.Account{OwnerID: "alice", Version: 1}), models.ErrDuplicateRecord)

	t.Run("save bumps version", func(t *testing.T) {
		account, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		account.Balance = 50

		require.NoError(t, store.SaveAccount(ctx, account))
		assert.Equal(t, int64(2), account.Version)

		stored, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(50), stored.Balance)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		stale, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		fresh, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)

		fresh.Balance = 100
		require.NoError(t, store.SaveAccount(ctx, fresh))

		stale.Balance = 0
		assert.ErrorIs(t, store.SaveAccount(ctx, stale), models.ErrVersionConflict)

		stored, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(100), stored.Balance)
	})

	t.Run("reads are copies", func(t *testing.T) {
		account, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		account.Balance = 999

		stored, err := store.GetAccount(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, int64(999), stored.Balance)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.GetAccount(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}

func TestMemoryStore_Product(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateProduct(ctx, &models.Product{ID: "p1", Name: "Cola", Price: 10, Stock: 3, OwnerID: "bob", Version: 1}))

	product, err := store.GetProduct(ctx, "p1")
	require.NoError(t, err)
	product.Stock = 2
	require.NoError(t, store.SaveProduct(ctx, product))

	product.Version = 1
	assert.ErrorIs(t, store.SaveProduct(ctx, product), models.ErrVersionConflict)

	_, err = store.GetProduct(ctx, "p2")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestMemoryStore_User(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &models.User{ID: "u1", Username: "Alice", Role: models.RoleBuyer}))
	assert.ErrorIs(t, store.CreateUser(ctx, &models.User{ID: "u2", Username: "alice"}), models.ErrDuplicateRecord)

	user, err := store.GetUserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestMemoryStore_ConcurrentCompareAndSwap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateAccount(ctx, &models.Account{OwnerID: "alice", Version: 1}))

	const writers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	start := make(chan struct{})
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			account := &models.Account{OwnerID: "alice", Balance: 5, Version: 1}
			if store.SaveAccount(ctx, account) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
}
