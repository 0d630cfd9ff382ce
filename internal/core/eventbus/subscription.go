package eventbus

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 事件订阅
//
// 每个订阅拥有独立的收件箱和处理协程，慢订阅者不影响其他订阅者。
// 取下一个信封与检查关闭状态在 mu 下完成：Cancel 返回后不会再开始新的处理函数调用。
type Subscription struct {
	id      string
	name    string
	bus     *Bus
	ch      *channel
	typeID  types.TypeID
	handler pkgif.EnvelopeHandler
	onClear func()
	gate    *gate

	mu       sync.Mutex
	inbox    []types.Envelope
	attached bool
	closed   bool
	err      error

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// 确保实现接口
var _ pkgif.Subscription = (*Subscription)(nil)

func newSubscription(bus *Bus, ch *channel, typeID types.TypeID, handler pkgif.EnvelopeHandler, settings pkgif.SubscriptionSettings) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		name:    settings.Name,
		bus:     bus,
		ch:      ch,
		typeID:  typeID,
		handler: handler,
		onClear: settings.OnClear,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if settings.Owner != nil {
		s.gate = newGate(s, settings.Owner, settings.ActiveState, settings.DropWhenInactive)
	}
	return s
}

// ID 返回订阅 ID
func (s *Subscription) ID() string {
	return s.id
}

// TypeID 返回订阅的类型标识
func (s *Subscription) TypeID() types.TypeID {
	return s.typeID
}

// Channel 返回订阅所在通道
func (s *Subscription) Channel() types.Channel {
	return s.ch.kind
}

// Done 订阅结束时关闭
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err 返回订阅结束原因
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel 取消订阅
//
// 可重复调用；返回后处理函数不会再被调用（正在执行的调用除外）。
func (s *Subscription) Cancel() {
	s.cancelWith(nil)
}

func (s *Subscription) cancelWith(reason error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.attached = false
		s.err = reason
		s.inbox = nil
		s.mu.Unlock()

		s.ch.detach(s)
		if s.gate != nil {
			s.gate.stop()
		}
		s.bus.forget(s)
		close(s.done)

		if reason != nil {
			logger.Debug("订阅已结束", "sub", s.label(), "type", s.typeID, "reason", reason)
		}
	})
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) label() string {
	if s.name != "" {
		return s.name
	}
	return log.TruncateID(s.id, 8)
}

// ============================================================================
// 挂接与接收
// ============================================================================

// attach 挂接到通道（幂等）
func (s *Subscription) attach() {
	s.mu.Lock()
	if s.closed || s.attached {
		s.mu.Unlock()
		return
	}
	s.attached = true
	s.mu.Unlock()

	s.ch.attach(s)
}

// detach 从通道摘除并清空收件箱
func (s *Subscription) detach() {
	s.ch.detach(s)

	s.mu.Lock()
	s.attached = false
	purged := len(s.inbox)
	s.inbox = nil
	s.mu.Unlock()

	for i := 0; i < purged; i++ {
		s.bus.reporter.Dropped(pkgif.DropInactive)
	}
}

// offer 由通道在其锁内调用，只入队不执行处理函数
func (s *Subscription) offer(env types.Envelope) {
	s.mu.Lock()
	if s.closed || !s.attached {
		s.mu.Unlock()
		return
	}
	if s.gate != nil && s.gate.drop && !s.gate.eligible() {
		s.mu.Unlock()
		s.bus.reporter.Dropped(pkgif.DropInactive)
		return
	}
	if max := s.bus.cfg.MaxPending; max > 0 && len(s.inbox) >= max {
		s.mu.Unlock()
		s.bus.reporter.Dropped(pkgif.DropOverflow)
		if s.bus.warnLimiter.Allow() {
			logger.Warn("订阅收件箱已满，丢弃事件", "sub", s.label(), "type", env.Type, "maxPending", max)
		}
		return
	}
	s.inbox = append(s.inbox, env)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// next 取出下一个可投递的信封
func (s *Subscription) next() (types.Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.closed && len(s.inbox) > 0 {
		env := s.inbox[0]
		s.inbox[0] = types.Envelope{}
		s.inbox = s.inbox[1:]

		if s.gate != nil && !s.gate.eligible() {
			s.bus.reporter.Dropped(pkgif.DropInactive)
			continue
		}
		return env, true
	}
	return types.Envelope{}, false
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.wake:
		case <-s.done:
			return
		}
		for {
			env, ok := s.next()
			if !ok {
				break
			}
			s.deliver(env)
		}
	}
}

// watch 绑定 ctx，结束时以 ctx 的错误取消订阅
func (s *Subscription) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.cancelWith(ctx.Err())
	case <-s.done:
	}
}

// ============================================================================
// 投递
// ============================================================================

// begin 在调用回调前再次确认订阅未被取消
//
// next 之后到回调开始之前仍可能发生 Cancel，这里是最后的检查点。
func (s *Subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Subscription) deliver(env types.Envelope) {
	if env.IsSentinel() {
		if s.onClear != nil {
			if !s.begin() {
				return
			}
			if err := s.invoke(func() { s.onClear() }); err != nil {
				s.fail(env, err)
			}
		}
		return
	}
	if !env.Matches(s.typeID) {
		return
	}

	clk := s.bus.clock
	start := clk.Now()
	if !s.begin() {
		return
	}
	if err := s.invoke(func() { s.handler(env) }); err != nil {
		s.fail(env, err)
		return
	}
	elapsed := clk.Since(start)
	s.bus.reporter.Delivered()

	if threshold := s.bus.cfg.SlowHandlerThreshold.Duration(); threshold > 0 && elapsed >= threshold {
		s.bus.reporter.SlowHandler()
		if s.bus.warnLimiter.Allow() {
			logger.Warn("慢处理函数", "sub", s.label(), "type", env.Type, "elapsed", elapsed, "threshold", threshold)
		}
	}
}

// handlerPanic 处理函数 panic 的内部表示
type handlerPanic struct {
	value any
	stack []byte
}

func (p *handlerPanic) Error() string {
	return fmt.Sprintf("%s: %v", ErrHandlerPanic, p.value)
}

func (p *handlerPanic) Unwrap() error {
	return ErrHandlerPanic
}

func (s *Subscription) invoke(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if mismatch, ok := r.(*PayloadMismatchError); ok {
				err = mismatch
				return
			}
			err = &handlerPanic{value: r, stack: debug.Stack()}
		}
	}()
	fn()
	return nil
}

// fail 处理函数失败后拆除订阅
func (s *Subscription) fail(env types.Envelope, err error) {
	var hp *handlerPanic
	switch {
	case errors.As(err, &hp):
		s.bus.reporter.Panicked()
		logger.Error("事件处理函数 panic，订阅已拆除",
			"sub", s.label(),
			"type", env.Type,
			"panic", hp.value,
			"stack", string(hp.stack))
		if h := s.bus.panicHandler; h != nil {
			h(PanicInfo{
				SubscriptionID: s.id,
				TypeID:         env.Type,
				Value:          hp.value,
				Stack:          hp.stack,
			})
		}
	case errors.Is(err, ErrPayloadMismatch):
		logger.Error("载荷类型与类型标识不符，订阅已拆除", "sub", s.label(), "err", err)
	}
	s.cancelWith(err)
}
