package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision 是一次限流判定的结果。
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // 仅在被拒绝时有意义：窗口剩余时间
}

// Limiter 基于 Redis 的固定窗口计数限流器。
//
// 每个 (clientKey, 窗口) 一个计数器：第一次请求创建窗口并设置过期，
// 窗口自然过期后计数归零。状态完全由 Redis 持有，进程重启不丢窗口。
type Limiter struct {
	client *redis.Client
	script *redis.Script
}

// INCR 和首次的 EXPIRE 必须表现得像一个原子单元，否则并发下第一跳
// 可能丢掉过期时间，窗口泄漏、永不重置。Lua 里以“我这次自增后恰好
// 等于 1”为设置过期的触发条件；TTL < 0 的兜底分支补救历史上已经
// 泄漏的 key。
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
if ttl < 0 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		script: fixedWindowScript,
	}
}

// Admit 判定 clientKey 在当前窗口内是否放行。
//
// Redis 不可用时 fail open：记日志、放行，绝不因为限流器故障挡掉流量；
// 调用方永远拿不到限流后端的错误。
func (l *Limiter) Admit(ctx context.Context, clientKey string, limit int, window time.Duration) Decision {
	windowSecs := int64(window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}

	res, err := l.script.Run(ctx, l.client, []string{"rl:" + clientKey}, windowSecs).Int64Slice()
	if err != nil || len(res) < 2 {
		slog.Error("rate limiter backend unavailable, failing open", "key", clientKey, "err", err)
		return Decision{Allowed: true, Limit: limit, Remaining: limit}
	}

	count, ttl := res[0], res[1]
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if count > int64(limit) {
		return Decision{
			Limit:      limit,
			Remaining:  0,
			RetryAfter: time.Duration(ttl) * time.Second,
		}
	}
	return Decision{Allowed: true, Limit: limit, Remaining: remaining}
}
