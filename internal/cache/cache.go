package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/nolalabs/analytics/internal/common/logger"
	"github.com/nolalabs/analytics/internal/common/redis"
)

// TTLs for the two classes of cached data. Derived analytics go stale quickly;
// reference tables change rarely.
const (
	DefaultTTL   = 300 * time.Second
	InsightsTTL  = 600 * time.Second
	ReferenceTTL = 3600 * time.Second
)

// Status distinguishes a genuine miss from a store failure. Callers must treat
// Unavailable like Miss (fail-open), but the distinction stays inspectable.
type Status int

const (
	Hit Status = iota
	Miss
	Unavailable
)

// Lookup is the result of a cache read.
type Lookup struct {
	Status Status
	Value  []byte
}

// Found reports whether the lookup produced a usable value.
func (l Lookup) Found() bool {
	return l.Status == Hit
}

// Cache is a fail-open JSON cache over Redis. Store failures are logged and
// absorbed: a broken cache degrades to recomputation, never to a failed request.
type Cache struct {
	rdb *redis.Client
	log logger.Logger
}

func New(rdb *redis.Client, log logger.Logger) *Cache {
	return &Cache{rdb: rdb, log: log}
}

// Fingerprint derives a deterministic cache key from a prefix and canonical
// string params. encoding/json emits map keys in sorted order, so the same
// logical params always hash identically regardless of insertion order. Values
// must already be strings (timestamps rendered to RFC3339, id lists sorted and
// joined) so that equal representations of the same value cannot diverge.
func Fingerprint(prefix string, params map[string]string) string {
	canonical, _ := json.Marshal(params)
	sum := sha256.Sum256(canonical)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Get reads a key. Absent keys return Miss; any store error returns Unavailable.
func (c *Cache) Get(ctx context.Context, key string) Lookup {
	value, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return Lookup{Status: Miss}
	}
	if err != nil {
		c.log.Warnf("Cache get failed for %s: %v", key, err)
		return Lookup{Status: Unavailable}
	}
	return Lookup{Status: Hit, Value: value}
}

// Set stores a JSON-serialized value with a TTL. Failures are logged, not returned.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warnf("Cache marshal failed for %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warnf("Cache set failed for %s: %v", key, err)
	}
}

// Delete removes a single key. Failures are logged, not returned.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.log.Warnf("Cache delete failed for %s: %v", key, err)
	}
}

// ClearPattern removes every key matching a glob pattern via SCAN and returns
// the number deleted.
func (c *Cache) ClearPattern(ctx context.Context, pattern string) int {
	deleted := 0
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warnf("Cache delete failed for %s: %v", iter.Val(), err)
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		c.log.Warnf("Cache scan failed for %s: %v", pattern, err)
	}
	return deleted
}
