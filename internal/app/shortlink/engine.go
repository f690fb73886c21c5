package shortlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"short.local/internal/app/shortlink/stats"
)

// DefaultCacheTTL 是没有显式过期时间时的缓存 TTL（7 天）。
const DefaultCacheTTL = 604800 * time.Second

// DefaultMaxRetries 是随机短码的生成重试上限。
// 在 62^6 空间里生日边界下连续碰撞是病态信号（通常是随机源坏了），
// 所以这里是硬顶，不做无界重试。
const DefaultMaxRetries = 10

// Options 是引擎的可调参数，零值会回落到默认值。
type Options struct {
	CodeLength int
	MaxRetries int
	CacheTTL   time.Duration
}

// Visit 携带一次跳转的客户端信息，用于异步点击统计。
type Visit struct {
	IP        string
	UserAgent string
	Referer   string
}

// Engine 编排 生成器 + 指纹 + 存储 + 缓存，实现 创建/解析 两个用例。
//
// 设计原因：
// - 依赖全部显式注入（没有包级单例连接），测试时换成内存假实现即可
// - 存储是唯一性与存在性的唯一仲裁者；缓存只是加速器，坏了降级、不影响正确性
type Engine struct {
	store  LinkStore
	cache  LinkCache
	gen    Generator
	clicks stats.Collector

	codeLength int
	maxRetries int
	cacheTTL   time.Duration

	now func() time.Time
}

func NewEngine(store LinkStore, cache LinkCache, clicks stats.Collector, opts Options) *Engine {
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Engine{
		store:      store,
		cache:      cache,
		gen:        EntropyGenerator{},
		clicks:     clicks,
		codeLength: opts.CodeLength,
		maxRetries: opts.MaxRetries,
		cacheTTL:   opts.CacheTTL,
		now:        time.Now,
	}
}

// Create 为 rawURL 创建（或幂等返回已有的）短链。
//
// customCode 为空时走随机生成 + 有界重试；expiresAt / createdBy 可为 nil。
//
// 去重说明：FindByFingerprint 的 check-then-act 在并发下有一个窄竞态——
// 两个几乎同时的创建可能都走到插入。这是文档化接受的不变量弱化：
// 唯一约束只兜底 code 冲突；url_hash 唯一索引命中时退化为
// “读出先写者的记录并返回”，没有索引时允许出现两条同指纹记录。
func (e *Engine) Create(ctx context.Context, rawURL, customCode string, expiresAt *time.Time, createdBy *int64) (Link, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Link{}, err
	}
	fingerprint := Fingerprint(normalized)

	existing, err := e.store.FindByFingerprint(ctx, fingerprint)
	switch {
	case err == nil:
		if !existing.Expired(e.now()) {
			return existing, nil // 同一 URL 重复提交：幂等返回，不造第二个码
		}
	case !errors.Is(err, ErrNotFound):
		return Link{}, fmt.Errorf("find by fingerprint: %w", err)
	}

	code, err := e.selectCode(ctx, customCode)
	if err != nil {
		return Link{}, err
	}

	link := Link{
		Code:        code,
		URL:         normalized,
		Fingerprint: fingerprint,
		ExpiresAt:   expiresAt,
		CreatedBy:   createdBy,
	}

	created, err := e.store.Insert(ctx, link)
	if errors.Is(err, ErrDuplicateCode) {
		// 并发窗口：另一个创建在 selectCode 检查之后抢先插入了同一个码。
		// 整个选码步骤只重试一次，这是唯一会被引擎重试的存储错误。
		if customCode != "" {
			return Link{}, ErrCodeInUse
		}
		link.Code, err = e.selectCode(ctx, "")
		if err != nil {
			return Link{}, err
		}
		created, err = e.store.Insert(ctx, link)
		if errors.Is(err, ErrDuplicateCode) {
			return Link{}, ErrCodeGenerationExhausted
		}
	}
	if errors.Is(err, ErrDuplicateURL) {
		// 同一 URL 的并发创建输给了对方：读出先写者的记录并返回
		winner, ferr := e.store.FindByFingerprint(ctx, fingerprint)
		if ferr != nil {
			return Link{}, fmt.Errorf("reread after fingerprint conflict: %w", ferr)
		}
		return winner, nil
	}
	if err != nil {
		return Link{}, fmt.Errorf("insert shortlink: %w", err)
	}

	e.populateCache(ctx, created)
	return created, nil
}

// selectCode 确定短码：自定义码 走校验+占用检查；否则 生成+检查，最多 maxRetries 次。
func (e *Engine) selectCode(ctx context.Context, customCode string) (string, error) {
	if customCode != "" {
		if err := ValidateCode(customCode); err != nil {
			return "", err
		}
		_, err := e.store.FindByCode(ctx, customCode)
		switch {
		case err == nil:
			return "", ErrCodeInUse
		case errors.Is(err, ErrNotFound):
			return customCode, nil
		default:
			return "", fmt.Errorf("check custom code: %w", err)
		}
	}

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		code := e.gen.Generate(e.codeLength)
		_, err := e.store.FindByCode(ctx, code)
		switch {
		case errors.Is(err, ErrNotFound):
			return code, nil
		case err != nil:
			return "", fmt.Errorf("check generated code: %w", err)
		}
		// 碰撞，换一个码重试
	}
	return "", ErrCodeGenerationExhausted
}

// Resolve 把短码解析成目标 URL（cache-aside 读路径）。
//
// 命中缓存直接返回，不碰存储；未命中回源存储并回填缓存。
// 解析成功后异步发出点击事件，事件发送失败不影响响应。
func (e *Engine) Resolve(ctx context.Context, code string, visit Visit) (string, error) {
	if e.cache != nil {
		cached, err := e.cache.Get(ctx, code)
		if err != nil {
			// 缓存故障只降级，不报错
			slog.Warn("shortlink cache read failed, falling back to store", "code", code, "err", err)
		} else if cached != "" {
			e.emitClick(code, visit)
			return cached, nil
		}
	}

	link, err := e.store.FindByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find by code: %w", err)
	}
	// 存储层已按过期过滤，这里再兜底检查一次
	if link.Expired(e.now()) {
		return "", ErrNotFound
	}

	e.populateCache(ctx, link)
	e.emitClick(code, visit)
	return link.URL, nil
}

// populateCache 尽力写缓存：有过期时间时 TTL 取剩余有效期，失败只记日志。
func (e *Engine) populateCache(ctx context.Context, link Link) {
	if e.cache == nil {
		return
	}
	ttl := e.cacheTTL
	if link.ExpiresAt != nil {
		ttl = link.ExpiresAt.Sub(e.now())
	}
	if ttl <= 0 {
		return
	}
	if err := e.cache.SetWithTTL(ctx, link.Code, link.URL, ttl); err != nil {
		slog.Warn("shortlink cache write failed", "code", link.Code, "err", err)
	}
}

func (e *Engine) emitClick(code string, visit Visit) {
	if e.clicks == nil {
		return
	}
	e.clicks.Collect(stats.ClickEvent{
		Code:      code,
		ClickedAt: e.now(),
		IP:        visit.IP,
		UserAgent: visit.UserAgent,
		Referer:   visit.Referer,
	})
}
