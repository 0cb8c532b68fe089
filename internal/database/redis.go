package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/vendora/backend/internal/config"
	"github.com/vendora/backend/internal/models"
	"go.uber.org/zap"
)

// PurchaseQueueKey is the Redis list committed purchases are pushed to.
const PurchaseQueueKey = "vending:purchases"

// InitRedis returns a connected client, or nil when Redis is unreachable so the
// service can run without it.
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without redis", zap.Error(err))
		rdb.Close()
		return nil
	}

	logger.Info("redis connection established", zap.String("addr", cfg.Addr()))
	return rdb
}

// RedisPurchaseQueue pushes purchase events onto a Redis list for downstream
// consumers (reporting, seller notifications).
type RedisPurchaseQueue struct {
	redis *redis.Client
	key   string
}

func NewRedisPurchaseQueue(client *redis.Client) *RedisPurchaseQueue {
	return &RedisPurchaseQueue{redis: client, key: PurchaseQueueKey}
}

func (q *RedisPurchaseQueue) PublishPurchase(ctx context.Context, event models.PurchaseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := q.redis.RPush(ctx, q.key, string(data)).Err(); err != nil {
		return fmt.Errorf("push purchase event: %w", err)
	}
	return nil
}
