package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// ============================================================================
// 泛型辅助函数
// ============================================================================

// Register 为 T 显式注册类型标识
func Register[T any](bus pkgif.EventBus, typeID types.TypeID) error {
	return bus.RegisterType(reflect.TypeFor[T](), typeID)
}

// TypeIDOf 返回 T 的类型标识
func TypeIDOf[T any](bus pkgif.EventBus) (types.TypeID, error) {
	return bus.ResolveType(reflect.TypeFor[T]())
}

// Subscribe 订阅 T 类型的事件
//
//	sub, err := eventbus.Subscribe(bus, func(e UserLoggedIn) {
//	    // ...
//	}, pkgif.ObserveSticky())
func Subscribe[T any](bus pkgif.EventBus, fn func(T), opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	typeID, err := TypeIDOf[T](bus)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", reflect.TypeFor[T](), err)
	}

	return bus.SubscribeType(typeID, func(env types.Envelope) {
		v, ok := env.Payload.(T)
		if !ok {
			panic(&PayloadMismatchError{TypeID: env.Type, Want: reflect.TypeFor[T](), Payload: env.Payload})
		}
		fn(v)
	}, opts...)
}

// Observe 订阅 T 类型的事件并阻塞到 ctx 结束或订阅被拆除
//
// ctx 结束时返回 ctx.Err()，其余情况返回订阅的结束原因。
func Observe[T any](ctx context.Context, bus pkgif.EventBus, fn func(T), opts ...pkgif.SubscriptionOpt) error {
	sub, err := Subscribe(bus, fn, append(opts[:len(opts):len(opts)], pkgif.WithContext(ctx))...)
	if err != nil {
		return err
	}
	<-sub.Done()
	return sub.Err()
}

// Next 等待第一个 T 类型的事件
//
// 等待期间总线被 Clear 时返回 ErrCleared；粘性订阅在缓冲中有 T 时立即返回。
func Next[T any](ctx context.Context, bus pkgif.EventBus, opts ...pkgif.SubscriptionOpt) (T, error) {
	var zero T

	result := make(chan T, 1)
	cleared := make(chan struct{})
	var clearOnce sync.Once

	opts = append(opts[:len(opts):len(opts)], pkgif.OnClear(func() {
		clearOnce.Do(func() { close(cleared) })
	}))
	sub, err := Subscribe(bus, func(v T) {
		select {
		case result <- v:
		default:
		}
	}, opts...)
	if err != nil {
		return zero, err
	}
	defer sub.Cancel()

	select {
	case v := <-result:
		return v, nil
	case <-cleared:
		return zero, ErrCleared
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-sub.Done():
		// 订阅结束前可能已收到事件
		select {
		case v := <-result:
			return v, nil
		default:
		}
		if err := sub.Err(); err != nil {
			return zero, err
		}
		return zero, ErrClosed
	}
}
