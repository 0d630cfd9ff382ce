// Package eventbus 实现事件总线
package eventbus

import (
	"context"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// ============================================================================
// 本地选项函数
// ============================================================================

// PostSticky 发射到粘性通道
//
// 这是一个便利函数，与 pkg/interfaces.PostSticky 等效
func PostSticky() pkgif.PostOpt {
	return pkgif.PostSticky()
}

// ObserveSticky 订阅粘性通道
//
// 这是一个便利函数，与 pkg/interfaces.ObserveSticky 等效
func ObserveSticky() pkgif.SubscriptionOpt {
	return pkgif.ObserveSticky()
}

// WithLifecycle 使订阅受 owner 的生命周期约束
func WithLifecycle(owner pkgif.LifecycleOwner) pkgif.SubscriptionOpt {
	return pkgif.WithLifecycle(owner)
}

// ActiveState 设置允许投递的最低生命周期状态
func ActiveState(state types.LifecycleState) pkgif.SubscriptionOpt {
	return pkgif.ActiveState(state)
}

// DropWhenInactive 非活跃期间保持挂接并丢弃事件
func DropWhenInactive() pkgif.SubscriptionOpt {
	return pkgif.DropWhenInactive()
}

// WithContext 将订阅绑定到 ctx
func WithContext(ctx context.Context) pkgif.SubscriptionOpt {
	return pkgif.WithContext(ctx)
}

// OnClear 设置 Clear 哨兵回调
func OnClear(fn func()) pkgif.SubscriptionOpt {
	return pkgif.OnClear(fn)
}

// WithName 设置订阅名称
func WithName(name string) pkgif.SubscriptionOpt {
	return pkgif.WithName(name)
}
