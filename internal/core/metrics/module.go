package metrics

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-flowbus/config"
	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Clock clock.Clock `optional:"true"`
}

// Result Metrics 模块输出，同一个 Counters 以三种类型导出
type Result struct {
	fx.Out

	Counters    *Counters
	Reporter    Reporter
	BusReporter pkgif.BusReporter
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(ProvideCounters),
	fx.Invoke(registerCollector),
	fx.Invoke(registerSnapshotLogger),
)

// ProvideCounters 从参数创建 Counters
func ProvideCounters(p Params) Result {
	c := NewCounters(p.Clock)
	return Result{
		Counters:    c,
		Reporter:    c,
		BusReporter: c,
	}
}

// ConfigFromUnified 从统一配置获取指标配置
func ConfigFromUnified(cfg *config.Config) config.MetricsConfig {
	if cfg == nil {
		return config.DefaultMetricsConfig()
	}
	return cfg.Metrics
}

type collectorParams struct {
	fx.In

	LC         fx.Lifecycle
	Reporter   Reporter
	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// registerCollector 启用时在启动阶段向 Registerer 注册采集器，停止时注销
func registerCollector(p collectorParams) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enable || p.Registerer == nil {
		return
	}

	collector := NewCollector(cfg.Namespace, p.Reporter)
	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := p.Registerer.Register(collector); err != nil {
				return fmt.Errorf("register metrics collector: %w", err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			p.Registerer.Unregister(collector)
			return nil
		},
	})
}

type snapshotParams struct {
	fx.In

	LC         fx.Lifecycle
	Reporter   Reporter
	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// registerSnapshotLogger 配置了快照间隔时启动快照日志
func registerSnapshotLogger(p snapshotParams) {
	interval := ConfigFromUnified(p.UnifiedCfg).SnapshotInterval.Duration()
	if interval <= 0 {
		return
	}

	sl := NewSnapshotLogger(p.Reporter, p.Clock)
	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sl.Start(interval)
			return nil
		},
		OnStop: func(_ context.Context) error {
			sl.Stop()
			return nil
		},
	})
}
