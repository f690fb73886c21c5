package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once 保证指标只注册一次。
	// Prometheus 的 registry 不允许重复注册同名指标，否则会直接 panic。
	once sync.Once

	// HTTPRequestsTotal：累计请求数（Counter），常用于计算 QPS/错误率。
	//
	// labels：
	// - method：HTTP 方法
	// - route：路由模板（用 pattern 而不是带 id 的真实 path，避免无限 label）
	// - status：HTTP 状态码字符串
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds：请求耗时分布（Histogram），用于 P95/P99。
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInflightRequests：当前正在处理中的请求数（Gauge）。
	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// CacheOperations：缓存命中情况。
	//
	// labels：
	// - layer：l1（本地）/ l2（Redis）
	// - result：hit / miss
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortlink_cache_operations_total",
			Help: "Shortlink cache operations by layer and result.",
		},
		[]string{"layer", "result"},
	)

	// ShortlinkRedirects：跳转成功次数。
	ShortlinkRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortlink_redirects_total",
			Help: "Total number of successful shortlink redirects.",
		},
	)

	// RateLimitDecisions：限流判定结果。
	//
	// labels：
	// - scope：限流场景前缀（create/redirect/...）
	// - decision：allowed / limited / failopen
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Rate limiter decisions by scope.",
		},
		[]string{"scope", "decision"},
	)

	// ClickEventsDropped：因缓冲满或下游不可用丢弃的点击事件数。
	ClickEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_events_dropped_total",
			Help: "Click events dropped because the sink was full or unavailable.",
		},
	)
)

// Init 注册指标：只允许注册一次（否则 panic: duplicate metrics collector registration）
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			CacheOperations,
			ShortlinkRedirects,
			RateLimitDecisions,
			ClickEventsDropped,
		)
	})
}
