// Package codegen SKU/UID 生成与序列号分配
package codegen

import (
	"context"
	"sync"

	"item_taxonomy_v1_202603/internal/apperr"
)

// MaxSequence 序列号可编码上限：26 个字母 × 10000
const MaxSequence = 26 * 10000

// SequenceAllocator 物料序列号分配器
// Next 必须是原子的自增并读取，并发调用不得出现重号
type SequenceAllocator interface {
	Next(ctx context.Context, itemTypeCode string) (int64, error)
}

// ==================== 内存实现 ====================

// MemoryAllocator 进程内分配器，测试与单机兜底用
type MemoryAllocator struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{values: make(map[string]int64)}
}

// Next 互斥锁保护下自增
func (a *MemoryAllocator) Next(ctx context.Context, itemTypeCode string) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.values[itemTypeCode] + 1
	if next > MaxSequence {
		return 0, apperr.NewExhaustedError(itemTypeCode, next)
	}
	a.values[itemTypeCode] = next
	return next, nil
}

// Seed 预置起始值，测试用
func (a *MemoryAllocator) Seed(itemTypeCode string, value int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[itemTypeCode] = value
}
