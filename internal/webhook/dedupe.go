package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const dedupePrefix = "webhook:dedupe:"

// DedupeKey derives the duplicate-filter key for a delivery from the provider
// and a digest of the raw body.
func DedupeKey(provider string, body []byte) string {
	sum := sha256.Sum256(body)
	return dedupePrefix + provider + ":" + hex.EncodeToString(sum[:])
}

// RedisDeduper implements a sliding duplicate window over redis. It fails
// open: when redis is unreachable the delivery is treated as new, and the
// state-guarded reconciliation absorbs the duplicate.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisDeduper creates a deduper with the given window.
func NewRedisDeduper(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisDeduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDeduper{client: client, ttl: ttl, logger: logger}
}

// Seen reports whether the key was already marked. It never marks the key
// itself: a delivery only counts as seen once it has been enqueued, so a
// failed enqueue leaves redeliveries free to try again.
func (d *RedisDeduper) Seen(ctx context.Context, key string) bool {
	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		d.logger.Warn("dedupe lookup failed, treating delivery as new", zap.Error(err))
		return false
	}
	return n > 0
}

// Mark records the key after a successful enqueue. Best effort: a failed mark
// only means a later duplicate reaches the worker, where it no-ops.
func (d *RedisDeduper) Mark(ctx context.Context, key string) {
	if err := d.client.SetNX(ctx, key, 1, d.ttl).Err(); err != nil {
		d.logger.Warn("dedupe mark failed", zap.Error(err))
	}
}
