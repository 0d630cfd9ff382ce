package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// SnapshotSource 快照数据源
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Collector 把快照适配为 prometheus.Collector
//
// 每次采集时读取一次快照，不额外维护 Prometheus 计数器。
type Collector struct {
	source SnapshotSource

	posted    *prometheus.Desc
	delivered *prometheus.Desc
	dropped   *prometheus.Desc
	panics    *prometheus.Desc
	slow      *prometheus.Desc
	active    *prometheus.Desc
	postRate  *prometheus.Desc
}

// 确保实现接口
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建采集器
func NewCollector(namespace string, source SnapshotSource) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		source:    source,
		posted:    desc("posted_total", "Envelopes dispatched, by channel.", "channel"),
		delivered: desc("delivered_total", "Handler invocations that returned normally."),
		dropped:   desc("dropped_total", "Envelopes not delivered, by reason.", "reason"),
		panics:    desc("handler_panics_total", "Handler panics that tore down a subscription."),
		slow:      desc("slow_handlers_total", "Handler invocations slower than the configured threshold."),
		active:    desc("active_subscriptions", "Subscriptions not yet cancelled."),
		postRate:  desc("post_rate", "Average posts per second over the last minute."),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.posted
	ch <- c.delivered
	ch <- c.dropped
	ch <- c.panics
	ch <- c.slow
	ch <- c.active
	ch <- c.postRate
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Snapshot()

	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.posted, s.PostedTransient, types.ChannelTransient.String())
	counter(c.posted, s.PostedSticky, types.ChannelSticky.String())
	counter(c.delivered, s.Delivered)
	counter(c.dropped, s.DroppedInactive, string(pkgif.DropInactive))
	counter(c.dropped, s.DroppedOverflow, string(pkgif.DropOverflow))
	counter(c.dropped, s.DroppedUnobserved, string(pkgif.DropUnobserved))
	counter(c.panics, s.HandlerPanics)
	counter(c.slow, s.SlowHandlers)

	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.ActiveSubscriptions))
	ch <- prometheus.MustNewConstMetric(c.postRate, prometheus.GaugeValue, s.PostRate)
}
