package shortlink

import "errors"

// 错误分类（domain error taxonomy）。
//
// 设计原因：
// - 上层（HTTP）用 errors.Is 稳定地映射状态码（400/404/409/...），不关心底层细节
// - 存储层把驱动错误（如 pgx 的 23505）翻译成这里的哨兵错误，领域层不 import 驱动
var (
	// ErrInvalidURL：URL 不是合法的 http/https 绝对地址。
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidCode：自定义短码不满足 [0-9A-Za-z]{4,12}。
	ErrInvalidCode = errors.New("invalid code format")

	// ErrCodeInUse：自定义短码已被占用。
	ErrCodeInUse = errors.New("code already in use")

	// ErrCodeGenerationExhausted：随机短码连续碰撞达到重试上限。
	// 连续碰撞在 62^6 空间里几乎不可能，出现通常意味着随机源坏了。
	ErrCodeGenerationExhausted = errors.New("short code generation exhausted")

	// ErrNotFound：短码不存在或已过期。
	ErrNotFound = errors.New("shortlink not found")

	// ErrDuplicateCode：存储层唯一约束命中（code 冲突），仅在并发窗口内出现。
	ErrDuplicateCode = errors.New("shortlink code already exists")

	// ErrDuplicateURL：存储层 url_hash 唯一索引命中（同一 URL 的并发创建）。
	ErrDuplicateURL = errors.New("shortlink url already exists")
)
