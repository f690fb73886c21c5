package stats

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingStore struct {
	mu     sync.Mutex
	events []ClickEvent
}

func (s *recordingStore) RecordClicks(_ context.Context, events []ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestConsumerFlushesOnClose(t *testing.T) {
	store := &recordingStore{}
	collector := NewChannelCollector(16)
	consumer := NewConsumer(store, collector)

	done := make(chan struct{})
	go func() {
		consumer.Run(context.Background())
		close(done)
	}()

	for i := 0; i < 5; i++ {
		collector.Collect(ClickEvent{Code: fmt.Sprintf("c%d", i), ClickedAt: time.Now()})
	}
	collector.Close()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("consumer did not exit after collector close")
	}
	if store.count() != 5 {
		t.Fatalf("flushed %d events, want 5", store.count())
	}
}

func TestConsumerFlushesFullBatchImmediately(t *testing.T) {
	store := &recordingStore{}
	collector := NewChannelCollector(256)
	consumer := NewConsumer(store, collector)
	consumer.batchSize = 10
	consumer.interval = time.Hour // 只靠满批触发

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(ctx)

	for i := 0; i < 10; i++ {
		collector.Collect(ClickEvent{Code: fmt.Sprintf("b%d", i)})
	}

	deadline := time.After(3 * time.Second)
	for store.count() < 10 {
		select {
		case <-deadline:
			t.Fatalf("flushed %d events, want 10", store.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestKafkaConsumerStopsOnContextCancel(t *testing.T) {
	// broker 不可达：读取协程只会收到错误，Run 必须仍然能被 ctx 干净地停掉
	store := &recordingStore{}
	k := NewKafkaConsumer([]string{"127.0.0.1:1"}, "clicks", store)
	defer k.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

func TestConsumerFlushesOnInterval(t *testing.T) {
	store := &recordingStore{}
	collector := NewChannelCollector(16)
	consumer := NewConsumer(store, collector)
	consumer.interval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(ctx)

	collector.Collect(ClickEvent{Code: "lonely"})

	deadline := time.After(3 * time.Second)
	for store.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("interval flush did not happen")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
