package mocks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// ErrMockUnregistered MockEventBus 中未注册的类型
var ErrMockUnregistered = errors.New("mock: unregistered type")

// MockEventBus 模拟 EventBus 接口实现
//
// Post 在调用方协程中同步投递给匹配的订阅，不区分通道。
// 用于测试只依赖 EventBus 接口的组件。
type MockEventBus struct {
	mu sync.RWMutex

	// 存储
	registered    map[reflect.Type]types.TypeID
	subscriptions []*MockSubscription

	// 可覆盖的方法
	PostFunc          func(event interface{}, opts ...interfaces.PostOpt) interfaces.Emission
	SubscribeTypeFunc func(typeID types.TypeID, handler interfaces.EnvelopeHandler, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error)

	// 调用记录
	PostCalls          []interface{}
	SubscribeTypeCalls []types.TypeID
	ClearCalls         int
	CloseCalls         int
}

var _ interfaces.EventBus = (*MockEventBus)(nil)

// NewMockEventBus 创建带有默认值的 MockEventBus
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		registered: make(map[reflect.Type]types.TypeID),
	}
}

// Post 同步投递事件
func (m *MockEventBus) Post(event interface{}, opts ...interfaces.PostOpt) interfaces.Emission {
	m.mu.Lock()
	m.PostCalls = append(m.PostCalls, event)
	m.mu.Unlock()

	if m.PostFunc != nil {
		return m.PostFunc(event, opts...)
	}

	typeID, err := m.ResolveType(reflect.TypeOf(event))
	if err != nil {
		return &MockEmission{err: err}
	}

	var settings interfaces.PostSettings
	for _, opt := range opts {
		opt(&settings)
	}
	env := types.NewEnvelope(typeID, event, types.ChannelFor(settings.Sticky))
	for _, sub := range m.activeSubscriptions() {
		if env.Matches(sub.typeID) {
			sub.handler(env)
		}
	}
	return &MockEmission{}
}

// Clear 同步投递哨兵
func (m *MockEventBus) Clear() interfaces.Emission {
	m.mu.Lock()
	m.ClearCalls++
	m.mu.Unlock()

	for _, sub := range m.activeSubscriptions() {
		if sub.onClear != nil {
			sub.onClear()
		}
	}
	return &MockEmission{}
}

// SubscribeType 记录订阅
func (m *MockEventBus) SubscribeType(typeID types.TypeID, handler interfaces.EnvelopeHandler, opts ...interfaces.SubscriptionOpt) (interfaces.Subscription, error) {
	m.mu.Lock()
	m.SubscribeTypeCalls = append(m.SubscribeTypeCalls, typeID)
	seq := len(m.SubscribeTypeCalls)
	m.mu.Unlock()

	if m.SubscribeTypeFunc != nil {
		return m.SubscribeTypeFunc(typeID, handler, opts...)
	}

	var settings interfaces.SubscriptionSettings
	for _, opt := range opts {
		opt(&settings)
	}

	sub := &MockSubscription{
		id:      fmt.Sprintf("mock-%d", seq),
		typeID:  typeID,
		channel: types.ChannelFor(settings.Sticky),
		handler: handler,
		onClear: settings.OnClear,
		done:    make(chan struct{}),
	}
	if ctx := settings.Context; ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.cancel(ctx.Err())
			case <-sub.done:
			}
		}()
	}

	m.mu.Lock()
	m.subscriptions = append(m.subscriptions, sub)
	m.mu.Unlock()

	return sub, nil
}

// RegisterType 注册类型标识
func (m *MockEventBus) RegisterType(typ reflect.Type, typeID types.TypeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered[typ] = typeID
	return nil
}

// ResolveType 返回已注册的类型标识
func (m *MockEventBus) ResolveType(typ reflect.Type) (types.TypeID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.registered[typ]
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrMockUnregistered, typ)
	}
	return id, nil
}

// Close 取消所有订阅
func (m *MockEventBus) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	subs := m.subscriptions
	m.subscriptions = nil
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return nil
}

// SubscriptionCount 返回未取消的订阅数
func (m *MockEventBus) SubscriptionCount() int {
	return len(m.activeSubscriptions())
}

func (m *MockEventBus) activeSubscriptions() []*MockSubscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := make([]*MockSubscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		select {
		case <-sub.done:
		default:
			active = append(active, sub)
		}
	}
	return active
}

// ============================================================================
// MockSubscription 方法
// ============================================================================

// MockSubscription 模拟 Subscription 接口实现
type MockSubscription struct {
	id      string
	typeID  types.TypeID
	channel types.Channel
	handler interfaces.EnvelopeHandler
	onClear func()

	mu   sync.Mutex
	once sync.Once
	done chan struct{}
	err  error
}

// ID 返回订阅 ID
func (s *MockSubscription) ID() string { return s.id }

// TypeID 返回类型标识
func (s *MockSubscription) TypeID() types.TypeID { return s.typeID }

// Channel 返回通道
func (s *MockSubscription) Channel() types.Channel { return s.channel }

// Cancel 取消订阅
func (s *MockSubscription) Cancel() { s.cancel(nil) }

// Done 返回结束通道
func (s *MockSubscription) Done() <-chan struct{} { return s.done }

// Err 返回结束原因
func (s *MockSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *MockSubscription) cancel(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// ============================================================================
// MockEmission 方法
// ============================================================================

// MockEmission 已完成的 Emission
type MockEmission struct {
	err error
}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done 总是已关闭
func (e *MockEmission) Done() <-chan struct{} { return closedCh }

// Wait 立即返回
func (e *MockEmission) Wait(_ context.Context) error { return e.err }

// Err 返回错误
func (e *MockEmission) Err() error { return e.err }
