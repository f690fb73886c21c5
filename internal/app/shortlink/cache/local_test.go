package cache

import (
	"testing"
	"time"
)

func TestLocalCacheHonorsShortTTL(t *testing.T) {
	l, err := NewLocalCache(100, 1<<16)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	defer l.Close()

	// 调用方给的 TTL 比本地上限短时必须生效，否则快过期的链接会在 L1 里多活
	l.Set("soon00", "https://example.com/soon", 100*time.Millisecond)

	time.Sleep(50 * time.Millisecond) // 等异步写入落盘
	if _, ok := l.Get("soon00"); !ok {
		t.Fatal("entry should still be readable before its ttl")
	}

	time.Sleep(150 * time.Millisecond)
	if v, ok := l.Get("soon00"); ok {
		t.Fatalf("entry survived past its ttl: %q", v)
	}
}

func TestLocalCacheDropsNonPositiveTTL(t *testing.T) {
	l, err := NewLocalCache(100, 1<<16)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	defer l.Close()

	l.Set("neg000", "https://example.com/x", -time.Second)
	time.Sleep(50 * time.Millisecond)
	if _, ok := l.Get("neg000"); ok {
		t.Fatal("non-positive ttl must not be cached")
	}
}
