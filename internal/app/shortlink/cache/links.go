package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"short.local/internal/platform/metrics"
)

const keyPrefix = "sl:"

// LinkCache 是两级缓存实现：L1 本地（ristretto）、L2 Redis。
//
// 缓存只是加速器：TTL 是建议值、允许被提前淘汰，任何存在性判断
// 都不以这里为准（权威在存储层）。
type LinkCache struct {
	client *redis.Client
	local  *LocalCache // L1，可为 nil
}

func NewLinkCache(client *redis.Client, local *LocalCache) *LinkCache {
	return &LinkCache{
		client: client,
		local:  local,
	}
}

// Get 返回缓存的目标 URL；两级都未命中返回 ("", nil)。
func (c *LinkCache) Get(ctx context.Context, code string) (string, error) {
	// L1
	if c.local != nil {
		if url, ok := c.local.Get(code); ok {
			metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			return url, nil
		}
		metrics.CacheOperations.WithLabelValues("l1", "miss").Inc()
	}

	// L2
	res, err := c.client.Get(ctx, keyPrefix+code).Result()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()

	// 回填 L1：跟随 L2 的剩余 TTL，快过期的链接不能在本地多活
	if c.local != nil {
		if ttl, terr := c.client.TTL(ctx, keyPrefix+code).Result(); terr == nil && ttl > 0 {
			c.local.Set(code, res, ttl)
		}
	}
	return res, nil
}

// SetWithTTL 两级同写；L1 的 TTL 会被截短以保证多实例一致性，
// 但绝不会超过调用方给的 ttl（过期语义两级必须一致）。
func (c *LinkCache) SetWithTTL(ctx context.Context, code, url string, ttl time.Duration) error {
	if c.local != nil {
		c.local.Set(code, url, ttl)
	}
	return c.client.Set(ctx, keyPrefix+code, url, ttl).Err()
}

// Invalidate 两级同删。
func (c *LinkCache) Invalidate(ctx context.Context, code string) error {
	if c.local != nil {
		c.local.Del(code)
	}
	return c.client.Del(ctx, keyPrefix+code).Err()
}

// Close 关闭本地缓存。
func (c *LinkCache) Close() {
	if c.local != nil {
		c.local.Close()
	}
}
