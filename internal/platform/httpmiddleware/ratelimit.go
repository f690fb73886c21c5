package httpmiddleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"short.local/internal/platform/metrics"
	"short.local/internal/platform/ratelimit"
)

// RateLimit 在进入业务 handler 之前做按 IP 的固定窗口限流。
//
// limiter 为 nil（限流被配置关掉）时直接放行。
// 响应头遵循常见约定：X-RateLimit-Limit / X-RateLimit-Remaining，
// 被拒绝时附带 Retry-After（单位秒，向上取整）。
func RateLimit(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			var builder strings.Builder
			builder.WriteString(prefix)
			builder.WriteString(":")
			builder.WriteString(ClientIP(r))
			key := builder.String()

			rlCtx, cancel := context.WithTimeout(r.Context(), 50*time.Millisecond)
			defer cancel()
			d := limiter.Admit(rlCtx, key, limit, window)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				metrics.RateLimitDecisions.WithLabelValues(prefix, "limited").Inc()
				secs := int64((d.RetryAfter + time.Second - 1) / time.Second) // ceil
				if secs > 0 {
					w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate limit exceeded",
					"retry_after": secs,
				})
				return
			}

			metrics.RateLimitDecisions.WithLabelValues(prefix, "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
