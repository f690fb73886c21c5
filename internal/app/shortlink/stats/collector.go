package stats

import (
	"context"
	"sync"
	"time"

	"short.local/internal/platform/metrics"
)

// ClickEvent 是跳转成功后发出的点击事件（固定结构，不用动态 map）。
type ClickEvent struct {
	Code      string    `json:"code"`
	ClickedAt time.Time `json:"clicked_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
}

// Collector 收集器接口（channel 版/Kafka 版可互换）。
//
// Collect 必须永不阻塞：解析路径不等待、也不依赖下游的可用性，
// 事件发不出去只能丢弃，绝不影响跳转响应。
type Collector interface {
	Collect(event ClickEvent)
	Close()
}

// ClickStore 是点击事件的落库契约，由 repo 实现。
type ClickStore interface {
	RecordClicks(ctx context.Context, events []ClickEvent) error
}

// ChannelCollector 基于有缓冲 channel 的进程内收集器。
//
// closed 用读写锁而不是原子位：Close 要关 channel，必须等在途的
// Collect 发送完（往已关闭的 channel 发送会 panic）。发送是非阻塞的，
// 读锁只握一瞬间。
type ChannelCollector struct {
	ch     chan ClickEvent
	mu     sync.RWMutex
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan ClickEvent, bufferSize),
	}
}

func (c *ChannelCollector) Collect(event ClickEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- event:
	default:
		// 通道满了，丢弃，保住跳转延迟
		metrics.ClickEventsDropped.Inc()
	}
}

func (c *ChannelCollector) Events() <-chan ClickEvent {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
