package mocks

import (
	"sync"

	"github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// MockReporter 模拟 BusReporter 接口实现
type MockReporter struct {
	mu sync.Mutex

	posted    map[types.Channel]int
	dropped   map[interfaces.DropReason]int
	delivered int
	panicked  int
	slow      int
	opened    int
	closed    int
}

var _ interfaces.BusReporter = (*MockReporter)(nil)

// NewMockReporter 创建 MockReporter
func NewMockReporter() *MockReporter {
	return &MockReporter{
		posted:  make(map[types.Channel]int),
		dropped: make(map[interfaces.DropReason]int),
	}
}

// Posted 记录一次发射
func (m *MockReporter) Posted(ch types.Channel) {
	m.mu.Lock()
	m.posted[ch]++
	m.mu.Unlock()
}

// Delivered 记录一次投递
func (m *MockReporter) Delivered() {
	m.mu.Lock()
	m.delivered++
	m.mu.Unlock()
}

// Dropped 记录一次丢弃
func (m *MockReporter) Dropped(reason interfaces.DropReason) {
	m.mu.Lock()
	m.dropped[reason]++
	m.mu.Unlock()
}

// Panicked 记录一次处理函数 panic
func (m *MockReporter) Panicked() {
	m.mu.Lock()
	m.panicked++
	m.mu.Unlock()
}

// SlowHandler 记录一次慢处理
func (m *MockReporter) SlowHandler() {
	m.mu.Lock()
	m.slow++
	m.mu.Unlock()
}

// SubscriptionOpened 记录订阅建立
func (m *MockReporter) SubscriptionOpened() {
	m.mu.Lock()
	m.opened++
	m.mu.Unlock()
}

// SubscriptionClosed 记录订阅结束
func (m *MockReporter) SubscriptionClosed() {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
}

// PostedCount 返回通道上的发射数
func (m *MockReporter) PostedCount(ch types.Channel) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posted[ch]
}

// DroppedCount 返回指定原因的丢弃数
func (m *MockReporter) DroppedCount(reason interfaces.DropReason) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped[reason]
}

// DeliveredCount 返回投递数
func (m *MockReporter) DeliveredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered
}

// PanickedCount 返回 panic 数
func (m *MockReporter) PanickedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panicked
}

// SlowCount 返回慢处理数
func (m *MockReporter) SlowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slow
}

// ActiveSubscriptions 返回活跃订阅数
func (m *MockReporter) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened - m.closed
}
