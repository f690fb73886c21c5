package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer 从 Kafka 读取点击事件并攒批落库（与 Consumer 批量策略一致）。
type KafkaConsumer struct {
	reader    *kafka.Reader
	store     ClickStore
	batchSize int
	interval  time.Duration
}

func NewKafkaConsumer(brokers []string, topic string, store ClickStore) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  "click-stats-consumer",
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
		store:     store,
		batchSize: 100,
		interval:  time.Second,
	}
}

func (k *KafkaConsumer) Run(ctx context.Context) {
	batch := make([]ClickEvent, 0, k.batchSize)
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	msgCh := make(chan ClickEvent, k.batchSize)

	// 读取协程：ReadMessage 是阻塞的，单独跑避免卡住批量定时器
	go func() {
		for {
			msg, err := k.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					close(msgCh)
					return
				}
				slog.Error("kafka read failed", "err", err)
				continue
			}

			var event ClickEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				slog.Error("unmarshal click event failed", "err", err)
				continue
			}
			// 批量循环可能已经退出，发送必须能被 ctx 打断
			select {
			case msgCh <- event:
			case <-ctx.Done():
				close(msgCh)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			k.flush(batch)
			return
		case event, ok := <-msgCh:
			if !ok {
				k.flush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= k.batchSize {
				k.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				k.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (k *KafkaConsumer) flush(batch []ClickEvent) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := k.store.RecordClicks(ctx, batch); err != nil {
		slog.Error("kafka consumer: flush failed", "err", err, "count", len(batch))
		return
	}
	slog.Debug("kafka consumer: flushed", "count", len(batch))
}

func (k *KafkaConsumer) Close() {
	_ = k.reader.Close()
}
