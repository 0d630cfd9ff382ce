package metrics

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// Reporter 提供记录和检索事件总线指标的方法
type Reporter interface {
	pkgif.BusReporter

	// Snapshot 返回当前指标快照
	Snapshot() Snapshot

	// Reset 重置累计计数（活跃订阅数除外）
	Reset()
}

// 确保 Counters 实现 Reporter 接口
var _ Reporter = (*Counters)(nil)

// Counters 事件总线计数器
//
// 全部使用原子操作，可在分发协程和订阅协程中并发调用。
type Counters struct {
	postedTransient atomic.Int64
	postedSticky    atomic.Int64
	delivered       atomic.Int64

	droppedInactive   atomic.Int64
	droppedOverflow   atomic.Int64
	droppedUnobserved atomic.Int64

	panics atomic.Int64
	slow   atomic.Int64
	active atomic.Int64

	postRate *RateMeter
}

// NewCounters 创建计数器
func NewCounters(clk clock.Clock) *Counters {
	return &Counters{
		postRate: NewRateMeter(clk),
	}
}

// Posted 记录一次发射
func (c *Counters) Posted(ch types.Channel) {
	if ch == types.ChannelSticky {
		c.postedSticky.Add(1)
	} else {
		c.postedTransient.Add(1)
	}
	c.postRate.Mark(1)
}

// Delivered 记录一次成功投递
func (c *Counters) Delivered() {
	c.delivered.Add(1)
}

// Dropped 记录一次丢弃
func (c *Counters) Dropped(reason pkgif.DropReason) {
	switch reason {
	case pkgif.DropInactive:
		c.droppedInactive.Add(1)
	case pkgif.DropOverflow:
		c.droppedOverflow.Add(1)
	case pkgif.DropUnobserved:
		c.droppedUnobserved.Add(1)
	default:
		logger.Debug("未知的丢弃原因", "reason", reason)
	}
}

// Panicked 记录一次处理函数 panic
func (c *Counters) Panicked() {
	c.panics.Add(1)
}

// SlowHandler 记录一次慢处理
func (c *Counters) SlowHandler() {
	c.slow.Add(1)
}

// SubscriptionOpened 记录订阅建立
func (c *Counters) SubscriptionOpened() {
	c.active.Add(1)
}

// SubscriptionClosed 记录订阅结束
func (c *Counters) SubscriptionClosed() {
	c.active.Add(-1)
}

// Snapshot 返回当前指标快照
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		PostedTransient:     c.postedTransient.Load(),
		PostedSticky:        c.postedSticky.Load(),
		Delivered:           c.delivered.Load(),
		DroppedInactive:     c.droppedInactive.Load(),
		DroppedOverflow:     c.droppedOverflow.Load(),
		DroppedUnobserved:   c.droppedUnobserved.Load(),
		HandlerPanics:       c.panics.Load(),
		SlowHandlers:        c.slow.Load(),
		ActiveSubscriptions: c.active.Load(),
		PostRate:            c.postRate.Rate(),
	}
}

// Reset 重置累计计数
//
// 活跃订阅数反映当前状态，不随 Reset 清零。
func (c *Counters) Reset() {
	c.postedTransient.Store(0)
	c.postedSticky.Store(0)
	c.delivered.Store(0)
	c.droppedInactive.Store(0)
	c.droppedOverflow.Store(0)
	c.droppedUnobserved.Store(0)
	c.panics.Store(0)
	c.slow.Store(0)
	c.postRate.Reset()
}
