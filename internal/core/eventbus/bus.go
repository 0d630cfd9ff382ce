package eventbus

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-flowbus/config"
	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
	"github.com/dep2p/go-flowbus/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线实现
//
// Post 只把发射放入分发队列，由单一分发协程按提交顺序扇出到各订阅者的收件箱。
type Bus struct {
	cfg          config.BusConfig
	registry     *Registry
	transient    *channel
	sticky       *channel
	disp         *dispatcher
	reporter     pkgif.BusReporter
	clock        clock.Clock
	panicHandler PanicHandler
	warnLimiter  *rate.Limiter

	seq atomic.Uint64

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool

	closeOnce sync.Once
}

// 确保实现接口
var _ pkgif.EventBus = (*Bus)(nil)

// PanicInfo 处理函数 panic 信息
type PanicInfo struct {
	SubscriptionID string
	TypeID         types.TypeID
	Value          any
	Stack          []byte
}

// PanicHandler 处理函数 panic 回调，在订阅协程中调用
type PanicHandler func(info PanicInfo)

// Option 总线选项
type Option func(*Bus)

// WithConfig 设置总线配置
func WithConfig(cfg config.BusConfig) Option {
	return func(b *Bus) {
		b.cfg = cfg
	}
}

// WithReporter 设置指标上报
func WithReporter(r pkgif.BusReporter) Option {
	return func(b *Bus) {
		if r != nil {
			b.reporter = r
		}
	}
}

// WithClock 设置时钟（测试可注入 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithPanicHandler 设置 panic 回调
func WithPanicHandler(h PanicHandler) Option {
	return func(b *Bus) {
		b.panicHandler = h
	}
}

// NewBus 创建事件总线
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		cfg:       config.DefaultBusConfig(),
		transient: newChannel(types.ChannelTransient),
		sticky:    newChannel(types.ChannelSticky),
		reporter:  nopReporter{},
		clock:     clock.New(),
		subs:      make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.registry = NewRegistry(b.cfg.AllowImplicitTypes)
	interval := b.cfg.WarnInterval.Duration()
	if interval <= 0 {
		b.warnLimiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		b.warnLimiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	b.disp = newDispatcher()

	return b
}

// ============================================================================
// 发射
// ============================================================================

// Post 异步发射事件
//
// 从不阻塞；总线已关闭或类型无法解析时返回带错误的 Emission。
// 关闭检查先于类型解析，关闭后的发射一律以 ErrClosed 完成。
func (b *Bus) Post(event interface{}, opts ...pkgif.PostOpt) pkgif.Emission {
	var settings pkgif.PostSettings
	for _, opt := range opts {
		opt(&settings)
	}

	if b.disp.isClosed() {
		return failedEmission(ErrClosed)
	}
	if event == nil {
		return failedEmission(ErrInvalidEvent)
	}
	typeID, err := b.registry.Resolve(reflect.TypeOf(event))
	if err != nil {
		logger.Warn("事件类型解析失败", "event", fmt.Sprintf("%T", event), "err", err)
		return failedEmission(err)
	}

	ch := b.channelFor(settings.Sticky)
	env := types.NewEnvelope(typeID, event, ch.kind)

	return b.submit(func() {
		b.publish(ch, env)
	})
}

// Clear 在两条通道上发射哨兵
//
// 粘性缓冲被哨兵替换，之后挂接的粘性订阅者不会收到重放。
func (b *Bus) Clear() pkgif.Emission {
	return b.submit(func() {
		b.publish(b.transient, types.SentinelEnvelope(types.ChannelTransient))
		b.publish(b.sticky, types.SentinelEnvelope(types.ChannelSticky))
	})
}

// submit 将发射任务交给分发协程
//
// 任务 panic 时发射以 ErrDispatchFailed 完成，panic 本身由分发协程记录。
func (b *Bus) submit(task func()) pkgif.Emission {
	em := newEmission()
	if !b.disp.submit(func() {
		finished := false
		defer func() {
			if !finished {
				em.complete(ErrDispatchFailed)
			}
		}()
		task()
		finished = true
		em.complete(nil)
	}) {
		em.complete(ErrClosed)
	}
	return em
}

// publish 仅在分发协程中调用
func (b *Bus) publish(ch *channel, env types.Envelope) {
	env.Seq = b.seq.Add(1)
	n := ch.publish(env)
	if env.IsSentinel() {
		return
	}
	b.reporter.Posted(ch.kind)
	if n == 0 && ch.kind == types.ChannelTransient {
		b.reporter.Dropped(pkgif.DropUnobserved)
	}
}

func (b *Bus) channelFor(sticky bool) *channel {
	if sticky {
		return b.sticky
	}
	return b.transient
}

// ============================================================================
// 订阅
// ============================================================================

// SubscribeType 按类型标识订阅
func (b *Bus) SubscribeType(typeID types.TypeID, handler pkgif.EnvelopeHandler, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	if !typeID.IsValid() {
		return nil, ErrInvalidTypeID
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	settings := pkgif.SubscriptionSettings{}
	for _, opt := range opts {
		opt(&settings)
	}
	if !settings.ActiveStateSet {
		settings.ActiveState = b.cfg.ActiveState()
	}

	sub := newSubscription(b, b.channelFor(settings.Sticky), typeID, handler, settings)
	if err := b.track(sub); err != nil {
		return nil, err
	}
	go sub.run()

	if sub.gate != nil {
		sub.gate.start()
	} else {
		sub.attach()
	}
	if ctx := settings.Context; ctx != nil {
		go sub.watch(ctx)
	}

	logger.Debug("新增订阅", "sub", sub.label(), "type", typeID, "channel", sub.Channel())
	return sub, nil
}

// RegisterType 显式注册类型标识
func (b *Bus) RegisterType(typ reflect.Type, typeID types.TypeID) error {
	return b.registry.Register(typ, typeID)
}

// ResolveType 解析类型标识
func (b *Bus) ResolveType(typ reflect.Type) (types.TypeID, error) {
	return b.registry.Resolve(typ)
}

func (b *Bus) track(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.subs[sub.id] = sub
	b.reporter.SubscriptionOpened()
	return nil
}

func (b *Bus) forget(sub *Subscription) {
	b.mu.Lock()
	_, ok := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	if ok {
		b.reporter.SubscriptionClosed()
	}
}

// ============================================================================
// 状态与关闭
// ============================================================================

// Stats 总线运行时统计
type Stats struct {
	// Subscriptions 活跃订阅数
	Subscriptions int
	// TransientAttached 瞬时通道当前挂接数
	TransientAttached int
	// StickyAttached 粘性通道当前挂接数
	StickyAttached int
	// Pending 分发队列中待处理的发射数
	Pending int
	// StickyType 粘性缓冲中的类型标识（空表示无缓冲或已 Clear）
	StickyType types.TypeID
}

// Stats 返回运行时统计
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	n := len(b.subs)
	b.mu.Unlock()

	st := Stats{
		Subscriptions:     n,
		TransientAttached: b.transient.size(),
		StickyAttached:    b.sticky.size(),
		Pending:           b.disp.pending(),
	}
	if env, ok := b.sticky.latest(); ok {
		st.StickyType = env.Type
	}
	return st
}

// Close 关闭总线
//
// 已排队的发射会先完成分发，然后所有订阅以 ErrClosed 结束。
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()

		b.disp.close()

		b.mu.Lock()
		subs := make([]*Subscription, 0, len(b.subs))
		for _, sub := range b.subs {
			subs = append(subs, sub)
		}
		b.mu.Unlock()

		for _, sub := range subs {
			sub.cancelWith(ErrClosed)
		}
		logger.Info("事件总线已关闭", "subscriptions", len(subs))
	})
	return nil
}

// nopReporter 未注入指标时使用
type nopReporter struct{}

func (nopReporter) Posted(types.Channel) {}
func (nopReporter) Delivered() {}
func (nopReporter) Dropped(pkgif.DropReason) {}
func (nopReporter) Panicked() {}
func (nopReporter) SlowHandler() {}
func (nopReporter) SubscriptionOpened() {}
func (nopReporter) SubscriptionClosed() {}
