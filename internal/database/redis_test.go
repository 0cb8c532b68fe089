package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/backend/internal/models"
)

func TestRedisPurchaseQueue_PublishPurchase(t *testing.T) {
	db, mock := redismock.NewClientMock()
	queue := NewRedisPurchaseQueue(db)
	ctx := context.Background()

	event := models.PurchaseEvent{
		ProductID: "p1",
		Buyer:     "alice",
		SellerID:  "bob",
		Price:     10,
		Change:    []int64{50, 20, 20},
		Remaining: 4,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	t.Run("pushes event", func(t *testing.T) {
		mock.ExpectRPush(PurchaseQueueKey, string(data)).SetVal(1)
		assert.NoError(t, queue.PublishPurchase(ctx, event))
	})

	t.Run("redis failure", func(t *testing.T) {
		mock.ExpectRPush(PurchaseQueueKey, string(data)).SetErr(errors.New("READONLY"))
		assert.Error(t, queue.PublishPurchase(ctx, event))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
