package stats

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"short.local/internal/platform/metrics"
)

// KafkaCollector 把点击事件异步写入 Kafka（多实例部署时用）。
type KafkaCollector struct {
	writer *kafka.Writer
}

func NewKafkaCollector(brokers []string, topic string) *KafkaCollector {
	return &KafkaCollector{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
			Async:    true, // 异步发送，不阻塞跳转
		},
	}
}

func (k *KafkaCollector) Collect(event ClickEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("click event marshal failed", "err", err)
		return
	}
	if err := k.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
	}); err != nil {
		slog.Error("kafka write failed", "err", err)
		metrics.ClickEventsDropped.Inc()
	}
}

func (k *KafkaCollector) Close() {
	_ = k.writer.Close()
}
