package repository

import (
	"context"
	"time"

	"github.com/RyanGano/skull-king/internal/domain"
	"github.com/RyanGano/skull-king/internal/logger"

	"github.com/redis/go-redis/v9"
)

// hashTTL bounds how long a fingerprint outlives its last write. Finished
// tables stop being polled; there is no point keeping their keys around.
const hashTTL = 24 * time.Hour

// HashCache keeps game fingerprints in redis so the polling fast path
// ("has anything changed?") is answered without touching the game store.
// It is strictly best-effort: a miss or a redis failure falls back to the
// store, which stays the source of truth.
type HashCache struct {
	rdb *redis.Client
}

func NewHashCache(addr, password string, db int) *HashCache {
	return &HashCache{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *HashCache) Get(ctx context.Context, id domain.GameID) (string, bool) {
	hash, err := c.rdb.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("hash cache read failed", "game", id, "error", err)
		}
		return "", false
	}
	return hash, true
}

// Set records the current fingerprint. When the write fails the key is
// dropped instead of left behind: a cached pre-save fingerprint would
// answer pollers "unchanged" forever, while a miss just costs a store read.
func (c *HashCache) Set(ctx context.Context, id domain.GameID, hash string) {
	if err := c.rdb.Set(ctx, cacheKey(id), hash, hashTTL).Err(); err != nil {
		logger.Debug("hash cache write failed", "game", id, "error", err)
		if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil && err != redis.Nil {
			logger.Debug("hash cache invalidate failed", "game", id, "error", err)
		}
	}
}

func cacheKey(id domain.GameID) string {
	return "skullking:hash:" + id.String()
}
