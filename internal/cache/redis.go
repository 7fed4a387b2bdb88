// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tcg2i/tcg-service/internal/models"
)

// Cache wraps a Redis client for two concerns: short-lived card-pool
// snapshots (the card set changes only when reseeded) and the pack-open
// audit queue consumed by offline tooling.
type Cache struct {
	Rdb *redis.Client
	Log *logrus.Logger

	// QueueName is the Redis list pack-open records are pushed to.
	QueueName string
	// TTL bounds staleness of cached card lists.
	TTL time.Duration
}

// Connect initializes the Redis client and verifies connectivity.
func Connect(addr, password string, db int, queueName string, ttl time.Duration, log *logrus.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{Rdb: rdb, Log: log, QueueName: queueName, TTL: ttl}, nil
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.Rdb.Close()
}

// CardLister is the card query surface being cached.
type CardLister interface {
	ListCards(ctx context.Context) ([]models.Card, error)
	ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error)
}

// CardCache decorates a CardLister with get-or-fill caching. A nil Cache
// passes straight through, so wiring stays uniform when Redis is disabled.
type CardCache struct {
	Inner CardLister
	Cache *Cache
}

func (cc *CardCache) ListCards(ctx context.Context) ([]models.Card, error) {
	return cc.fetch(ctx, "cards:all", func() ([]models.Card, error) {
		return cc.Inner.ListCards(ctx)
	})
}

func (cc *CardCache) ListCardsByRarity(ctx context.Context, rarity models.Rarity) ([]models.Card, error) {
	return cc.fetch(ctx, "cards:rarity:"+string(rarity), func() ([]models.Card, error) {
		return cc.Inner.ListCardsByRarity(ctx, rarity)
	})
}

func (cc *CardCache) fetch(ctx context.Context, key string, load func() ([]models.Card, error)) ([]models.Card, error) {
	if cc.Cache == nil {
		return load()
	}

	data, err := cc.Cache.Rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cards []models.Card
		if err := json.Unmarshal(data, &cards); err == nil {
			return cards, nil
		}
		// Corrupt entry: fall through to a reload.
	} else if err != redis.Nil {
		cc.Cache.Log.WithError(err).Warnf("card cache read failed for %s", key)
	}

	cards, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cards); err == nil {
		if err := cc.Cache.Rdb.Set(ctx, key, data, cc.Cache.TTL).Err(); err != nil {
			cc.Cache.Log.WithError(err).Warnf("card cache write failed for %s", key)
		}
	}
	return cards, nil
}

// Invalidate drops the cached card lists, e.g. after reseeding.
func (c *Cache) Invalidate(ctx context.Context) error {
	keys := []string{"cards:all"}
	for _, r := range models.Rarities {
		keys = append(keys, "cards:rarity:"+string(r))
	}
	return c.Rdb.Del(ctx, keys...).Err()
}

// PackOpenRecord is the audit trail entry pushed for every opened pack.
type PackOpenRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	CardIDs   []string  `json:"card_ids"`
	Weighted  bool      `json:"weighted"`
	Timestamp int64     `json:"timestamp"`
}

// PublishPackOpen serializes the record to JSON and pushes it onto the audit
// queue. This is best-effort bookkeeping; callers log failures and move on.
func (c *Cache) PublishPackOpen(ctx context.Context, record PackOpenRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal PackOpenRecord: %w", err)
	}
	if err := c.Rdb.RPush(ctx, c.QueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", c.QueueName, err)
	}
	return nil
}
