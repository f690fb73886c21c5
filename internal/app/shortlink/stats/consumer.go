package stats

import (
	"context"
	"log/slog"
	"time"
)

// Consumer 消费 channel 收集器里的点击事件，攒批落库。
//
// 批量策略：满 batchSize 条立即写，否则最长等 interval 后写，
// 退出前把剩余事件清掉。
type Consumer struct {
	store     ClickStore
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewConsumer(store ClickStore, collector *ChannelCollector) *Consumer {
	return &Consumer{
		store:     store,
		collector: collector,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run 阻塞消费循环，直到 ctx 取消或收集器关闭。
func (c *Consumer) Run(ctx context.Context) {
	batch := make([]ClickEvent, 0, c.batchSize)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush(batch)
			return
		case event, ok := <-c.collector.Events():
			if !ok {
				c.flush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				c.flush(batch)
				batch = batch[:0] // 保留容量，避免反复分配
			}
		case <-ticker.C:
			if len(batch) > 0 {
				c.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (c *Consumer) flush(batch []ClickEvent) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.store.RecordClicks(ctx, batch); err != nil {
		slog.Error("click stats: flush failed", "err", err, "count", len(batch))
		return
	}
	slog.Debug("click stats: flushed", "count", len(batch))
}
