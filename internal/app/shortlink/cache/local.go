package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache 基于 ristretto 的 L1 本地内存缓存。
//
// TTL 刻意比 L2 短：本地副本越短命，多实例之间的陈旧窗口越小。
type LocalCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewLocalCache 创建本地缓存。
// maxItems: 最大条目数（建议 1 万 ~ 10 万）
// maxCost: 最大内存占用字节数（建议 16MB ~ 64MB）
func NewLocalCache(maxItems int64, maxCost int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // ristretto 建议计数器为条目数的 10 倍
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache: c,
		ttl:   5 * time.Minute,
	}, nil
}

func (l *LocalCache) Get(code string) (string, bool) {
	if v, ok := l.cache.Get(code); ok {
		return v.(string), true
	}
	return "", false
}

// Set 写入本地缓存；ttl 超过本地上限时截短到上限。
// 绝不能超过调用方给的 ttl：链接快过期时 L1 必须跟着一起过期。
func (l *LocalCache) Set(code, url string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if ttl > l.ttl {
		ttl = l.ttl
	}
	// cost=1：按条目数限制
	l.cache.SetWithTTL(code, url, 1, ttl)
}

func (l *LocalCache) Del(code string) {
	l.cache.Del(code)
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
