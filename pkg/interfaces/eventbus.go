// Package interfaces 定义 FlowBus 公共接口
//
// 本文件定义 EventBus 接口，提供事件发布订阅功能。
package interfaces

import (
	"context"
	"reflect"

	"github.com/dep2p/go-flowbus/pkg/types"
)

// EventBus 定义事件总线接口
//
// EventBus 提供两条投递通道（瞬时 / 粘性）上的类型过滤发布订阅。
type EventBus interface {
	// Post 异步发射事件，不阻塞调用方
	Post(event interface{}, opts ...PostOpt) Emission

	// Clear 在两条通道上发射哨兵信封
	Clear() Emission

	// SubscribeType 按类型标识订阅信封
	SubscribeType(typeID types.TypeID, handler EnvelopeHandler, opts ...SubscriptionOpt) (Subscription, error)

	// RegisterType 为 Go 类型显式注册类型标识
	RegisterType(typ reflect.Type, typeID types.TypeID) error

	// ResolveType 解析 Go 类型对应的类型标识
	ResolveType(typ reflect.Type) (types.TypeID, error)

	// Close 关闭总线
	Close() error
}

// EnvelopeHandler 信封处理函数
type EnvelopeHandler func(env types.Envelope)

// Subscription 定义事件订阅接口
type Subscription interface {
	// ID 返回订阅 ID
	ID() string

	// TypeID 返回订阅的类型标识
	TypeID() types.TypeID

	// Channel 返回订阅所在通道
	Channel() types.Channel

	// Cancel 取消订阅，可重复调用
	Cancel()

	// Done 订阅结束时关闭
	Done() <-chan struct{}

	// Err 返回订阅结束原因（主动取消时为 nil）
	Err() error
}

// Emission 定义一次发射的句柄
type Emission interface {
	// Done 发射完成（已交付给当时挂接的全部订阅者）时关闭
	Done() <-chan struct{}

	// Wait 等待发射完成
	Wait(ctx context.Context) error

	// Err 返回发射错误，未完成时为 nil
	Err() error
}

// TypeNamer 事件类型可实现此接口以声明自己的类型标识
type TypeNamer interface {
	EventType() string
}

// ============================================================================
//                              选项
// ============================================================================

// PostOpt 发射选项函数类型
type PostOpt func(*PostSettings)

// SubscriptionOpt 订阅选项函数类型
type SubscriptionOpt func(*SubscriptionSettings)

// PostSettings 发射设置（导出以供实现使用）
type PostSettings struct {
	Sticky bool
}

// SubscriptionSettings 订阅设置（导出以供实现使用）
type SubscriptionSettings struct {
	// Sticky 订阅粘性通道
	Sticky bool

	// Owner 生命周期来源，nil 表示不受生命周期约束
	Owner LifecycleOwner

	// ActiveState 允许投递的最低生命周期状态
	ActiveState types.LifecycleState

	// ActiveStateSet 是否显式设置了 ActiveState（区分零值和未设置）
	ActiveStateSet bool

	// DropWhenInactive 非活跃时保持挂接并丢弃事件，而不是暂停
	DropWhenInactive bool

	// Context 订阅的作用域，结束时自动取消订阅
	Context context.Context

	// OnClear 收到 Clear 哨兵时回调
	OnClear func()

	// Name 订阅名称（日志用）
	Name string
}

// PostSticky 发射到粘性通道
func PostSticky() PostOpt {
	return func(s *PostSettings) {
		s.Sticky = true
	}
}

// ObserveSticky 订阅粘性通道（挂接时重放最近一个信封）
func ObserveSticky() SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Sticky = true
	}
}

// WithLifecycle 使订阅受生命周期约束
func WithLifecycle(owner LifecycleOwner) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Owner = owner
	}
}

// ActiveState 设置允许投递的最低生命周期状态
func ActiveState(state types.LifecycleState) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.ActiveState = state
		s.ActiveStateSet = true
	}
}

// DropWhenInactive 非活跃期间丢弃事件
func DropWhenInactive() SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.DropWhenInactive = true
	}
}

// WithContext 将订阅绑定到 ctx
func WithContext(ctx context.Context) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Context = ctx
	}
}

// OnClear 设置 Clear 哨兵回调
func OnClear(fn func()) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.OnClear = fn
	}
}

// WithName 设置订阅名称
func WithName(name string) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Name = name
	}
}
