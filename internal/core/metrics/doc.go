// Package metrics 提供事件总线指标
//
// Counters 实现 interfaces.BusReporter，用原子计数记录：
//   - 发射数（按通道）与最近 60 秒的发射速率
//   - 投递数、丢弃数（按原因：inactive / overflow / unobserved）
//   - 处理函数 panic 与慢处理次数
//   - 活跃订阅数
//
// # 快速开始
//
//	counters := metrics.NewCounters(nil)
//	bus := eventbus.NewBus(eventbus.WithReporter(counters))
//
//	s := counters.Snapshot()
//	fmt.Printf("posted=%d delivered=%d dropped=%d\n", s.Posted(), s.Delivered, s.Dropped())
//
// # Prometheus
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector("flowbus", counters))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    eventbus.Module(),
//	)
//
// 注入 prometheus.Registerer 时自动注册采集器；
// 配置 metrics.snapshot_interval 时周期性输出快照日志。
package metrics
