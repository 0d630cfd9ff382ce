package mocks

import (
	"sync"

	"github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// MockLifecycleOwner 模拟 LifecycleOwner 接口实现
//
// 通知在调用方协程中同步发出，且不持有内部锁。
type MockLifecycleOwner struct {
	mu sync.RWMutex

	state     types.LifecycleState
	observers map[int]func(types.LifecycleState)
	nextID    int

	// 可覆盖的方法
	CurrentStateFunc func() types.LifecycleState

	// 调用记录
	OnStateChangeCalls int
	UnregisterCalls    int
}

var _ interfaces.LifecycleOwner = (*MockLifecycleOwner)(nil)

// NewMockLifecycleOwner 创建处于 initial 状态的 MockLifecycleOwner
func NewMockLifecycleOwner(initial types.LifecycleState) *MockLifecycleOwner {
	return &MockLifecycleOwner{
		state:     initial,
		observers: make(map[int]func(types.LifecycleState)),
	}
}

// CurrentState 返回当前状态
func (m *MockLifecycleOwner) CurrentState() types.LifecycleState {
	if m.CurrentStateFunc != nil {
		return m.CurrentStateFunc()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// OnStateChange 注册状态回调
func (m *MockLifecycleOwner) OnStateChange(cb func(types.LifecycleState)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = cb
	m.OnStateChangeCalls++
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.UnregisterCalls++
			m.mu.Unlock()
		})
	}
}

// SetState 改变状态并通知所有观察者
func (m *MockLifecycleOwner) SetState(state types.LifecycleState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	m.Notify(state)
}

// SetStateSilently 改变状态但不通知
func (m *MockLifecycleOwner) SetStateSilently(state types.LifecycleState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// Notify 只发送通知（可用于模拟过期或重复通知）
func (m *MockLifecycleOwner) Notify(state types.LifecycleState) {
	m.mu.RLock()
	cbs := make([]func(types.LifecycleState), 0, len(m.observers))
	for _, cb := range m.observers {
		cbs = append(cbs, cb)
	}
	m.mu.RUnlock()

	for _, cb := range cbs {
		cb(state)
	}
}

// ObserverCount 返回当前注册的观察者数量
func (m *MockLifecycleOwner) ObserverCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observers)
}
