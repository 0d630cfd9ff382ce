package eventbus

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-flowbus/config"
	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
	"github.com/dep2p/go-flowbus/tests/mocks"
	"github.com/dep2p/go-flowbus/tests/testutil"
)

// ============================================================================
// 接口契约测试
// ============================================================================

// TestBus_ImplementsInterface 验证 Bus 实现接口
func TestBus_ImplementsInterface(t *testing.T) {
	var _ pkgif.EventBus = (*Bus)(nil)
	var _ pkgif.Subscription = (*Subscription)(nil)
	var _ pkgif.Emission = (*emission)(nil)
}

// ============================================================================
// 瞬时通道
// ============================================================================

// TestBus_Transient_DeliversToAttached 测试瞬时事件投递给已挂接订阅者
func TestBus_Transient_DeliversToAttached(t *testing.T) {
	bus := newTestBus(t)

	rec1 := testutil.NewRecorder[ping]()
	rec2 := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec1.Record)
	require.NoError(t, err)
	_, err = Subscribe(bus, rec2.Record)
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Post(ping{N: 1}), waitTimeout)

	assert.Equal(t, []int{1}, numbers(rec1.WaitLen(t, 1, waitTimeout)))
	assert.Equal(t, []int{1}, numbers(rec2.WaitLen(t, 1, waitTimeout)))
}

// TestBus_Transient_NoReplay 测试瞬时事件不重放给后来的订阅者
func TestBus_Transient_NoReplay(t *testing.T) {
	reporter := mocks.NewMockReporter()
	bus := newTestBus(t, WithReporter(reporter))

	testutil.WaitEmission(t, bus.Post(ping{N: 1}), waitTimeout)
	assert.Equal(t, 1, reporter.DroppedCount(pkgif.DropUnobserved))

	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec.Record)
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Post(ping{N: 2}), waitTimeout)
	assert.Equal(t, []int{2}, numbers(rec.WaitLen(t, 1, waitTimeout)))
}

// TestBus_OrderPreserved 测试同一发射方的事件按顺序到达
func TestBus_OrderPreserved(t *testing.T) {
	bus := newTestBus(t)

	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec.Record)
	require.NoError(t, err)

	const n = 1000
	for i := 0; i < n; i++ {
		bus.Post(ping{N: i})
	}

	got := numbers(rec.WaitLen(t, n, waitTimeout))
	for i := 0; i < n; i++ {
		require.Equal(t, i, got[i])
	}
}

// TestBus_PostNeverBlocks 测试处理函数阻塞时 Post 不阻塞
func TestBus_PostNeverBlocks(t *testing.T) {
	bus := newTestBus(t)

	h := newBlockingHandler()
	defer close(h.release)
	_, err := Subscribe(bus, h.wrap(func(ping) {}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			bus.Post(ping{N: i})
		}
	}()

	testutil.WaitDone(t, done, waitTimeout, "Post 被慢订阅者阻塞")
}

// ============================================================================
// 粘性通道
// ============================================================================

// TestBus_Sticky_ReplaysLatest 测试粘性通道只重放最近一个信封
func TestBus_Sticky_ReplaysLatest(t *testing.T) {
	bus := newTestBus(t)

	bus.Post(ping{N: 1}, PostSticky())
	testutil.WaitEmission(t, bus.Post(ping{N: 2}, PostSticky()), waitTimeout)

	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec.Record, ObserveSticky())
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Post(ping{N: 3}, PostSticky()), waitTimeout)
	assert.Equal(t, []int{2, 3}, numbers(rec.WaitLen(t, 2, waitTimeout)))
}

// TestBus_Sticky_BufferHoldsAnyType 测试粘性缓冲按通道而非按类型保存
func TestBus_Sticky_BufferHoldsAnyType(t *testing.T) {
	bus := newTestBus(t)

	bus.Post(ping{N: 1}, PostSticky())
	testutil.WaitEmission(t, bus.Post(pong{Msg: "x"}, PostSticky()), waitTimeout)

	// 缓冲中是 pong，ping 订阅者没有可重放的内容
	recPing := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, recPing.Record, ObserveSticky())
	require.NoError(t, err)

	recPong := testutil.NewRecorder[pong]()
	_, err = Subscribe(bus, recPong.Record, ObserveSticky())
	require.NoError(t, err)
	assert.Equal(t, "x", recPong.WaitLen(t, 1, waitTimeout)[0].Msg)

	testutil.WaitEmission(t, bus.Post(ping{N: 9}, PostSticky()), waitTimeout)
	assert.Equal(t, []int{9}, numbers(recPing.WaitLen(t, 1, waitTimeout)))
	assert.Equal(t, types.TypeID("test.ping"), bus.Stats().StickyType)
}

// TestBus_ChannelsIndependent 测试两条通道互不可见
func TestBus_ChannelsIndependent(t *testing.T) {
	bus := newTestBus(t)

	recT := testutil.NewRecorder[ping]()
	recS := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, recT.Record)
	require.NoError(t, err)
	_, err = Subscribe(bus, recS.Record, ObserveSticky())
	require.NoError(t, err)

	bus.Post(ping{N: 1}, PostSticky())
	bus.Post(ping{N: 2})
	bus.Post(ping{N: 3}, PostSticky())
	testutil.WaitEmission(t, bus.Post(ping{N: 4}), waitTimeout)

	assert.Equal(t, []int{2, 4}, numbers(recT.WaitLen(t, 2, waitTimeout)))
	assert.Equal(t, []int{1, 3}, numbers(recS.WaitLen(t, 2, waitTimeout)))
}

// TestBus_TypeFilter 测试订阅者只收到自己类型的事件
func TestBus_TypeFilter(t *testing.T) {
	bus := newTestBus(t)

	recPing := testutil.NewRecorder[ping]()
	recPong := testutil.NewRecorder[pong]()
	_, err := Subscribe(bus, recPing.Record)
	require.NoError(t, err)
	_, err = Subscribe(bus, recPong.Record)
	require.NoError(t, err)

	bus.Post(pong{Msg: "a"})
	bus.Post(ping{N: 1})
	testutil.WaitEmission(t, bus.Post(pong{Msg: "b"}), waitTimeout)

	assert.Equal(t, []int{1}, numbers(recPing.WaitLen(t, 1, waitTimeout)))
	got := recPong.WaitLen(t, 2, waitTimeout)
	assert.Equal(t, "a", got[0].Msg)
	assert.Equal(t, "b", got[1].Msg)
	assert.Equal(t, 1, recPing.Len())
}

// ============================================================================
// Clear
// ============================================================================

// TestBus_Clear_EmptiesStickyBuffer 测试 Clear 后新的粘性订阅者没有重放
func TestBus_Clear_EmptiesStickyBuffer(t *testing.T) {
	bus := newTestBus(t)

	bus.Post(ping{N: 1}, PostSticky())
	testutil.WaitEmission(t, bus.Clear(), waitTimeout)
	assert.Empty(t, bus.Stats().StickyType)

	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec.Record, ObserveSticky())
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Post(ping{N: 2}, PostSticky()), waitTimeout)
	assert.Equal(t, []int{2}, numbers(rec.WaitLen(t, 1, waitTimeout)))
}

// TestBus_Clear_NotifiesAttached 测试 Clear 哨兵触发两条通道上的 OnClear 且不调用处理函数
func TestBus_Clear_NotifiesAttached(t *testing.T) {
	bus := newTestBus(t)

	cleared := testutil.NewRecorder[types.Channel]()
	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, rec.Record, OnClear(func() { cleared.Record(types.ChannelTransient) }))
	require.NoError(t, err)
	_, err = Subscribe(bus, rec.Record, ObserveSticky(), OnClear(func() { cleared.Record(types.ChannelSticky) }))
	require.NoError(t, err)

	testutil.WaitEmission(t, bus.Clear(), waitTimeout)

	assert.ElementsMatch(t, []types.Channel{types.ChannelTransient, types.ChannelSticky}, cleared.WaitLen(t, 2, waitTimeout))
	assert.Zero(t, rec.Len())
}

// ============================================================================
// 错误路径
// ============================================================================

// TestBus_Post_Errors 测试 Post 的错误结果
func TestBus_Post_Errors(t *testing.T) {
	bus := newTestBus(t)

	type unregistered struct{}

	tests := []struct {
		name  string
		event interface{}
		want  error
	}{
		{"nil 事件", nil, ErrInvalidEvent},
		{"未注册类型", unregistered{}, ErrUnregisteredType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := bus.Post(tt.event)
			testutil.WaitDone(t, em.Done(), waitTimeout, "失败的发射应立即完成")
			assert.ErrorIs(t, em.Err(), tt.want)
		})
	}
}

// TestBus_SubscribeType_Errors 测试 SubscribeType 参数校验
func TestBus_SubscribeType_Errors(t *testing.T) {
	bus := newTestBus(t)

	_, err := bus.SubscribeType(types.SentinelTypeID, func(types.Envelope) {})
	assert.ErrorIs(t, err, ErrInvalidTypeID)

	_, err = bus.SubscribeType("test.ping", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

// TestBus_Close 测试关闭总线
func TestBus_Close(t *testing.T) {
	reporter := mocks.NewMockReporter()
	bus := newTestBus(t, WithReporter(reporter))

	sub, err := Subscribe(bus, func(ping) {})
	require.NoError(t, err)
	assert.Equal(t, 1, reporter.ActiveSubscriptions())

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "Close 应可重复调用")

	testutil.WaitDone(t, sub.Done(), waitTimeout, "关闭总线应结束订阅")
	assert.ErrorIs(t, sub.Err(), ErrClosed)
	assert.Equal(t, 0, reporter.ActiveSubscriptions())

	assert.ErrorIs(t, bus.Post(ping{}).Err(), ErrClosed)
	assert.ErrorIs(t, bus.Clear().Err(), ErrClosed)

	_, err = Subscribe(bus, func(ping) {})
	assert.ErrorIs(t, err, ErrClosed)
}

// TestBus_Close_PostChecksClosedFirst 测试关闭后的发射一律以 ErrClosed 完成
func TestBus_Close_PostChecksClosedFirst(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Close())

	type unregistered struct{}
	for _, event := range []interface{}{ping{}, unregistered{}, nil} {
		em := bus.Post(event)
		testutil.WaitDone(t, em.Done(), waitTimeout, "关闭后的发射应立即完成")
		assert.ErrorIs(t, em.Err(), ErrClosed, "event=%T", event)
	}
}

// panicOnceReporter 第一次 Posted 时 panic
type panicOnceReporter struct {
	*mocks.MockReporter
	fired atomic.Bool
}

func (r *panicOnceReporter) Posted(ch types.Channel) {
	if r.fired.CompareAndSwap(false, true) {
		panic("reporter failure")
	}
	r.MockReporter.Posted(ch)
}

// TestBus_Emission_CompletesOnDispatchPanic 测试分发 panic 时发射仍会完成
func TestBus_Emission_CompletesOnDispatchPanic(t *testing.T) {
	reporter := &panicOnceReporter{MockReporter: mocks.NewMockReporter()}
	bus := newTestBus(t, WithReporter(reporter))

	em := bus.Post(ping{N: 1})
	testutil.WaitDone(t, em.Done(), waitTimeout, "分发 panic 后发射应完成")
	assert.ErrorIs(t, em.Err(), ErrDispatchFailed)

	testutil.WaitEmission(t, bus.Post(ping{N: 2}), waitTimeout)
}

// TestBus_Close_DrainsQueued 测试关闭前已排队的发射完成分发
func TestBus_Close_DrainsQueued(t *testing.T) {
	bus := newTestBus(t)

	ems := make([]pkgif.Emission, 0, 100)
	for i := 0; i < 100; i++ {
		ems = append(ems, bus.Post(ping{N: i}))
	}
	require.NoError(t, bus.Close())

	for _, em := range ems {
		assert.NoError(t, em.Err())
	}
}

// ============================================================================
// 背压与慢处理
// ============================================================================

// TestBus_MaxPending_DropsNewest 测试收件箱满时丢弃新信封
func TestBus_MaxPending_DropsNewest(t *testing.T) {
	cfg := config.DefaultBusConfig()
	cfg.MaxPending = 2
	reporter := mocks.NewMockReporter()
	bus := newTestBus(t, WithConfig(cfg), WithReporter(reporter))

	h := newBlockingHandler()
	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, h.wrap(rec.Record))
	require.NoError(t, err)

	bus.Post(ping{N: 1})
	h.waitEntered(t)

	bus.Post(ping{N: 2})
	bus.Post(ping{N: 3})
	testutil.WaitEmission(t, bus.Post(ping{N: 4}), waitTimeout)
	assert.Equal(t, 1, reporter.DroppedCount(pkgif.DropOverflow))

	close(h.release)
	assert.Equal(t, []int{1, 2, 3}, numbers(rec.WaitLen(t, 3, waitTimeout)))
}

// TestBus_SlowHandler 测试慢处理函数计数
func TestBus_SlowHandler(t *testing.T) {
	mock := clock.NewMock()
	reporter := mocks.NewMockReporter()
	bus := newTestBus(t, WithClock(mock), WithReporter(reporter))

	rec := testutil.NewRecorder[ping]()
	_, err := Subscribe(bus, func(p ping) {
		if p.N == 1 {
			mock.Add(150 * time.Millisecond)
		}
		rec.Record(p)
	})
	require.NoError(t, err)

	bus.Post(ping{N: 1})
	bus.Post(ping{N: 2})
	rec.WaitLen(t, 2, waitTimeout)

	testutil.Eventually(t, waitTimeout, func() bool {
		return reporter.DeliveredCount() == 2
	}, "两个事件都应计入投递")
	assert.Equal(t, 1, reporter.SlowCount())
}

// ============================================================================
// 统计
// ============================================================================

// TestBus_Stats 测试运行时统计
func TestBus_Stats(t *testing.T) {
	bus := newTestBus(t)

	sub1, err := Subscribe(bus, func(ping) {})
	require.NoError(t, err)
	_, err = Subscribe(bus, func(ping) {}, ObserveSticky())
	require.NoError(t, err)

	st := bus.Stats()
	assert.Equal(t, 2, st.Subscriptions)
	assert.Equal(t, 1, st.TransientAttached)
	assert.Equal(t, 1, st.StickyAttached)

	sub1.Cancel()
	st = bus.Stats()
	assert.Equal(t, 1, st.Subscriptions)
	assert.Equal(t, 0, st.TransientAttached)
}

// TestBus_PanicHandler 测试 PanicHandler 收到 panic 信息
func TestBus_PanicHandler(t *testing.T) {
	infos := make(chan PanicInfo, 1)
	bus := newTestBus(t, WithPanicHandler(func(info PanicInfo) { infos <- info }))

	sub, err := Subscribe(bus, func(ping) { panic("boom") })
	require.NoError(t, err)
	bus.Post(ping{N: 1})

	select {
	case info := <-infos:
		assert.Equal(t, sub.ID(), info.SubscriptionID)
		assert.Equal(t, types.TypeID("test.ping"), info.TypeID)
		assert.Equal(t, "boom", info.Value)
		assert.NotEmpty(t, info.Stack)
	case <-time.After(waitTimeout):
		t.Fatal("PanicHandler 未被调用")
	}

	testutil.WaitDone(t, sub.Done(), waitTimeout, "panic 后订阅应结束")
	assert.True(t, errors.Is(sub.Err(), ErrHandlerPanic))
}
