package shortlink

import (
	"context"
	"time"
)

// Link 是短链领域对象（domain model）。
//
// 说明：
// - Code：短码（拼接成最终短链 URL，例如 https://s.example.com/{code}）
// - URL：规范化后的原始长链接
// - Fingerprint：规范化 URL 的 SHA-256 指纹，用于重复提交去重
// - ExpiresAt：nil 表示永不过期
//
// 生命周期：由 Engine.Create 创建；ClickCount 由异步统计消费者累加；
// 过期后从所有查询中剔除（存储层负责过滤，引擎再兜底检查一次）。
type Link struct {
	Code        string     `json:"code"`
	URL         string     `json:"url"`
	Fingerprint string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
	CreatedBy   *int64     `json:"-"`
}

// Expired 判断链接在 now 时刻是否已过期。
func (l Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// LinkStore 是权威存储契约（single source of truth）。
//
// 约定：
// - FindByCode / FindByFingerprint 只返回未过期记录，缺失返回 ErrNotFound
// - Insert 在 code 唯一约束冲突时返回 ErrDuplicateCode，
//   在 url_hash 唯一索引冲突时返回 ErrDuplicateURL
// - 所有操作都是单条记录级别的原子操作，不要求跨记录事务
type LinkStore interface {
	FindByCode(ctx context.Context, code string) (Link, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (Link, error)
	Insert(ctx context.Context, link Link) (Link, error)
	IncrementClicks(ctx context.Context, code string) error
}

// LinkCache 是加速用缓存契约。
//
// 缓存永远只是性能优化：TTL 是建议值，允许提前淘汰；
// 任何“是否存在”的判断都不得只看缓存。
type LinkCache interface {
	// Get 返回缓存的目标 URL；未命中返回 ("", nil)。
	Get(ctx context.Context, code string) (string, error)
	SetWithTTL(ctx context.Context, code, url string, ttl time.Duration) error
	Invalidate(ctx context.Context, code string) error
}
