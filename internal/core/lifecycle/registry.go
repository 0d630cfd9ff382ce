// Package lifecycle 提供生命周期注册表
//
// Registry 是 LifecycleOwner 的参考实现：
//   - 追踪当前生命周期状态
//   - 按状态变更顺序通知观察者（可重入）
//   - 提供状态 gate（等待到达特定状态）
//   - 终止状态（Destroyed）不可逆
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
	"github.com/dep2p/go-flowbus/pkg/types"
)

var logger = log.Logger("core/lifecycle")

var (
	// ErrDestroyed 注册表已到达终止状态
	ErrDestroyed = errors.New("lifecycle destroyed")
	// ErrInvalidState 无效的生命周期状态
	ErrInvalidState = errors.New("invalid lifecycle state")
)

// ============================================================================
//                              生命周期注册表
// ============================================================================

// Registry 生命周期注册表
//
// 通知在不持有状态锁的情况下发出，观察者可在回调中读取状态或再次 MoveTo。
// 回调中触发的变更排在当前通知之后，观察者看到的顺序与状态变更顺序一致。
type Registry struct {
	name string

	mu        sync.RWMutex
	state     types.LifecycleState
	observers map[uint64]func(types.LifecycleState)
	nextID    uint64
	// changed 每次状态变更时关闭并替换
	changed chan struct{}

	notifyMu    sync.Mutex
	pending     []types.LifecycleState
	dispatching bool

	ctx    context.Context
	cancel context.CancelFunc
}

// 确保实现接口
var _ pkgif.LifecycleOwner = (*Registry)(nil)

// NewRegistry 创建处于 Initialized 状态的注册表
func NewRegistry(name string) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		name:      name,
		state:     types.StateInitialized,
		observers: make(map[uint64]func(types.LifecycleState)),
		changed:   make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Name 返回注册表名称
func (r *Registry) Name() string {
	return r.name
}

// CurrentState 返回当前状态
func (r *Registry) CurrentState() types.LifecycleState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// OnStateChange 注册状态回调
//
// 终止后注册的回调不会被调用。返回的注销函数可重复调用。
func (r *Registry) OnStateChange(cb func(types.LifecycleState)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.IsTerminal() || cb == nil {
		return func() {}
	}

	id := r.nextID
	r.nextID++
	r.observers[id] = cb

	return func() {
		r.mu.Lock()
		delete(r.observers, id)
		r.mu.Unlock()
	}
}

// ============================================================================
//                              状态管理
// ============================================================================

// MoveTo 变更到指定状态
//
// 非终止状态之间可任意变更；目标为 Destroyed 时等同于 Destroy。
// 终止后返回 ErrDestroyed。
func (r *Registry) MoveTo(target types.LifecycleState) error {
	if target > types.StateResumed {
		return fmt.Errorf("%w: %d", ErrInvalidState, target)
	}
	if target.IsTerminal() {
		r.Destroy()
		return nil
	}

	r.mu.Lock()
	if r.state.IsTerminal() {
		r.mu.Unlock()
		return ErrDestroyed
	}
	if r.state == target {
		r.mu.Unlock()
		return nil
	}
	old := r.transitionLocked(target)
	r.mu.Unlock()

	logger.Info("生命周期状态变更",
		"owner", r.name,
		"from", old.String(),
		"to", target.String())

	r.drain()
	return nil
}

// Destroy 进入终止状态（可重复调用）
//
// 观察者收到 Destroyed 通知后全部注销，Context 被取消。
func (r *Registry) Destroy() {
	r.mu.Lock()
	if r.state.IsTerminal() {
		r.mu.Unlock()
		return
	}
	old := r.transitionLocked(types.StateDestroyed)
	r.mu.Unlock()

	logger.Info("生命周期已终止", "owner", r.name, "from", old.String())

	r.cancel()
	r.drain()
}

// transitionLocked 需持有 mu
func (r *Registry) transitionLocked(target types.LifecycleState) types.LifecycleState {
	old := r.state
	r.state = target
	close(r.changed)
	r.changed = make(chan struct{})

	// 在状态锁内入队，保证通知顺序与变更顺序一致
	r.notifyMu.Lock()
	r.pending = append(r.pending, target)
	r.notifyMu.Unlock()

	return old
}

// drain 派发排队的通知
//
// 已有协程在派发时直接返回，由该协程按顺序完成。
func (r *Registry) drain() {
	r.notifyMu.Lock()
	if r.dispatching {
		r.notifyMu.Unlock()
		return
	}
	r.dispatching = true

	for len(r.pending) > 0 {
		state := r.pending[0]
		r.pending = r.pending[1:]
		r.notifyMu.Unlock()

		for _, cb := range r.snapshot() {
			cb(state)
		}
		if state.IsTerminal() {
			r.mu.Lock()
			r.observers = make(map[uint64]func(types.LifecycleState))
			r.mu.Unlock()
		}

		r.notifyMu.Lock()
	}

	r.dispatching = false
	r.notifyMu.Unlock()
}

func (r *Registry) snapshot() []func(types.LifecycleState) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cbs := make([]func(types.LifecycleState), 0, len(r.observers))
	for _, cb := range r.observers {
		cbs = append(cbs, cb)
	}
	return cbs
}

// ============================================================================
//                              状态 gate
// ============================================================================

// WaitFor 等待状态到达 target 及以上
//
// 终止时返回 ErrDestroyed（target 为 Destroyed 时返回 nil）。
func (r *Registry) WaitFor(ctx context.Context, target types.LifecycleState) error {
	for {
		r.mu.RLock()
		state := r.state
		changed := r.changed
		r.mu.RUnlock()

		if state.IsTerminal() {
			if target.IsTerminal() {
				return nil
			}
			return ErrDestroyed
		}
		if !target.IsTerminal() && state.IsAtLeast(target) {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ObserverCount 返回已注册的观察者数量
func (r *Registry) ObserverCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Context 返回注册表上下文，终止时取消
func (r *Registry) Context() context.Context {
	return r.ctx
}

// Done 终止时关闭
func (r *Registry) Done() <-chan struct{} {
	return r.ctx.Done()
}
