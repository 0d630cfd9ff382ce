package flowbus

import (
	"context"

	"github.com/dep2p/go-flowbus/config"
	"github.com/dep2p/go-flowbus/internal/core/eventbus"
	"github.com/dep2p/go-flowbus/internal/core/lifecycle"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型化订阅
// ════════════════════════════════════════════════════════════════════════════

// Register 为 T 显式注册类型标识
func Register[T any](bus EventBus, typeID TypeID) error {
	return eventbus.Register[T](bus, typeID)
}

// TypeIDOf 返回 T 解析出的类型标识
func TypeIDOf[T any](bus EventBus) (TypeID, error) {
	return eventbus.TypeIDOf[T](bus)
}

// Subscribe 订阅类型为 T 的事件
//
// 返回的订阅需要调用 Cancel 结束，或通过 WithContext / WithLifecycle 自动结束。
func Subscribe[T any](bus EventBus, fn func(T), opts ...SubscriptionOpt) (Subscription, error) {
	return eventbus.Subscribe[T](bus, fn, opts...)
}

// Observe 在 ctx 结束前持续处理类型为 T 的事件
//
// 阻塞直到订阅结束，返回结束原因。
func Observe[T any](ctx context.Context, bus EventBus, fn func(T), opts ...SubscriptionOpt) error {
	return eventbus.Observe[T](ctx, bus, fn, opts...)
}

// Next 等待下一个类型为 T 的事件
func Next[T any](ctx context.Context, bus EventBus, opts ...SubscriptionOpt) (T, error) {
	return eventbus.Next[T](ctx, bus, opts...)
}

// ════════════════════════════════════════════════════════════════════════════
//                              选项
// ════════════════════════════════════════════════════════════════════════════

// PostSticky 发射到粘性通道
func PostSticky() PostOpt { return eventbus.PostSticky() }

// ObserveSticky 订阅粘性通道
func ObserveSticky() SubscriptionOpt { return eventbus.ObserveSticky() }

// WithLifecycle 使订阅受生命周期约束
func WithLifecycle(owner LifecycleOwner) SubscriptionOpt { return eventbus.WithLifecycle(owner) }

// ActiveState 设置允许投递的最低生命周期状态
func ActiveState(state LifecycleState) SubscriptionOpt { return eventbus.ActiveState(state) }

// DropWhenInactive 非活跃期间保持挂接并丢弃事件
func DropWhenInactive() SubscriptionOpt { return eventbus.DropWhenInactive() }

// WithContext 将订阅绑定到 ctx
func WithContext(ctx context.Context) SubscriptionOpt { return eventbus.WithContext(ctx) }

// OnClear 设置 Clear 哨兵回调
func OnClear(fn func()) SubscriptionOpt { return eventbus.OnClear(fn) }

// WithName 设置订阅名称
func WithName(name string) SubscriptionOpt { return eventbus.WithName(name) }

// ════════════════════════════════════════════════════════════════════════════
//                              独立组件
// ════════════════════════════════════════════════════════════════════════════

// Lifecycle 可手动驱动的生命周期注册表
type Lifecycle = lifecycle.Registry

// NewLifecycle 创建处于 Initialized 状态的生命周期注册表
func NewLifecycle(name string) *Lifecycle {
	return lifecycle.NewRegistry(name)
}

// NewBus 创建不经过运行时装配的独立事件总线
//
// 适用于测试或只需要总线本身的场景；调用方负责 Close。
func NewBus(opts ...BusOption) *Bus {
	return eventbus.NewBus(opts...)
}

// Bus 事件总线实现
type Bus = eventbus.Bus

// BusOption 独立事件总线选项
type BusOption = eventbus.Option

// BusWithConfig 设置事件总线配置
func BusWithConfig(cfg config.BusConfig) BusOption { return eventbus.WithConfig(cfg) }

// BusWithPanicHandler 设置处理函数 panic 回调
func BusWithPanicHandler(h PanicHandler) BusOption { return eventbus.WithPanicHandler(h) }
