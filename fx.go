package flowbus

import (
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-flowbus/config"
	"github.com/dep2p/go-flowbus/internal/core/eventbus"
	"github.com/dep2p/go-flowbus/internal/core/lifecycle"
	"github.com/dep2p/go-flowbus/internal/core/metrics"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
)

var fxLogger = log.Logger("flowbus/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与可选依赖（Registerer、Clock、PanicHandler）
//  2. Lifecycle: 应用级生命周期注册表
//  3. Metrics: 计数器，作为总线的 BusReporter
//  4. EventBus: 依赖配置和 BusReporter
//  5. 用户自定义 Fx 选项
func buildFxApp(cfg *config.Config, o *options, rt *Runtime) *fx.App {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	if o.panicHandler != nil {
		modules = append(modules, fx.Supply(o.panicHandler))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		lifecycle.Module(),
		metrics.Module,
		eventbus.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户自定义选项
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 组件注入与 Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Populate(&rt.bus, &rt.lifecycle, &rt.counters),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	fxLogger.Debug("组装 Fx 应用", "modules", len(modules), "metrics", cfg.Metrics.Enable)
	return fx.New(modules...)
}

// setupLogging 按配置设置全局日志输出
//
// 配置了日志文件时返回需要在停止时关闭的 Writer。
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	if cfg.File == "" {
		log.SetOutputWithLevel(os.Stderr, level, cfg.Format)
		return nil, nil
	}

	w := log.FileWriter(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	log.SetOutputWithLevel(w, level, cfg.Format)
	return w, nil
}
