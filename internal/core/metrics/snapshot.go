package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-flowbus/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// SnapshotLogger 周期性输出指标快照日志
type SnapshotLogger struct {
	source SnapshotSource
	clock  clock.Clock

	mu     sync.RWMutex
	cancel context.CancelFunc
	last   *Snapshot
	wg     sync.WaitGroup
}

// NewSnapshotLogger 创建快照日志器
func NewSnapshotLogger(source SnapshotSource, clk clock.Clock) *SnapshotLogger {
	if clk == nil {
		clk = clock.New()
	}
	return &SnapshotLogger{
		source: source,
		clock:  clk,
	}
}

// Start 启动周期性快照
func (l *SnapshotLogger) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return // 已经启动
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	ticker := l.clock.Ticker(interval)
	l.mu.Unlock()

	l.wg.Add(1)
	go l.loop(ctx, ticker)

	logger.Info("指标快照日志已启动", "interval", interval)
}

// Stop 停止快照
func (l *SnapshotLogger) Stop() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	l.wg.Wait()
}

// Last 返回最近一次快照
func (l *SnapshotLogger) Last() (Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.last == nil {
		return Snapshot{}, false
	}
	return *l.last, true
}

func (l *SnapshotLogger) loop(ctx context.Context, ticker *clock.Ticker) {
	defer l.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := l.source.Snapshot()
			l.mu.Lock()
			l.last = &s
			l.mu.Unlock()
			logSnapshot(s)
		}
	}
}

// logSnapshot 输出快照日志
func logSnapshot(s Snapshot) {
	logger.Info("事件总线指标快照",
		// 发射
		"posted", s.Posted(),
		"postedSticky", s.PostedSticky,
		"postRate", formatRate(s.PostRate),
		// 投递
		"delivered", s.Delivered,
		"dropped", s.Dropped(),
		"droppedOverflow", s.DroppedOverflow,
		// 健康
		"panics", s.HandlerPanics,
		"slow", s.SlowHandlers,
		"subscriptions", s.ActiveSubscriptions,
	)
}

// formatRate 格式化速率
func formatRate(perSec float64) string {
	return strconv.FormatFloat(perSec, 'f', 2, 64) + "/s"
}
