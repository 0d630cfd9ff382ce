package testutil

import (
	"sync"
	"testing"
	"time"
)

// Recorder 并发安全地记录处理函数收到的值
//
// 示例:
//
//	rec := testutil.NewRecorder[Ping]()
//	eventbus.Subscribe(bus, rec.Record)
//	rec.WaitLen(t, 1, time.Second)
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// NewRecorder 创建 Recorder
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Record 记录一个值，可直接作为处理函数
func (r *Recorder[T]) Record(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

// Values 返回已记录值的副本
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len 返回已记录值的数量
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// WaitLen 等待记录数达到 n
func (r *Recorder[T]) WaitLen(t *testing.T, n int, timeout time.Duration) []T {
	t.Helper()

	Eventually(t, timeout, func() bool {
		return r.Len() >= n
	}, "等待记录数达到预期")
	return r.Values()
}
