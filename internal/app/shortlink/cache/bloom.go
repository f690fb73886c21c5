package cache

import (
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter 记录所有已知短码，用于解析路径上的防穿透快速判定。
//
// 只有预热（全量灌入现存短码）完成后才可信：否则假阴性会把合法短码
// 挡在数据库之外。Ready 之前调用方必须无条件回源。
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
	ready  atomic.Bool
}

// NewBloomFilter 创建布隆过滤器。
// expectedItems: 预期元素数量；falsePositiveRate: 误判率（建议 0.01）
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (b *BloomFilter) Add(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(code)
}

// MightExist 返回 false 表示一定不存在；true 表示可能存在（有误判率）。
func (b *BloomFilter) MightExist(code string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(code)
}

// MarkReady 在全量预热完成后调用。
func (b *BloomFilter) MarkReady() {
	b.ready.Store(true)
}

func (b *BloomFilter) Ready() bool {
	return b.ready.Load()
}

// Count 返回已添加的元素数量（估算）。
func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}
