package flowbus

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-flowbus/config"
	"github.com/dep2p/go-flowbus/internal/core/eventbus"
	"github.com/dep2p/go-flowbus/internal/core/lifecycle"
	"github.com/dep2p/go-flowbus/internal/core/metrics"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
)

var logger = log.Logger("flowbus")

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// initializeTimeout 初始化超时（Fx App Start）
	initializeTimeout = 30 * time.Second

	// shutdownTimeout 调用方未设置截止时间时的停止超时
	shutdownTimeout = 15 * time.Second
)

// Runtime FlowBus 运行时
//
// 持有由 Fx 装配的事件总线、应用级生命周期和指标计数器。
// 总线在 New 返回时即可使用；Start 将应用生命周期推进到 Resumed，
// Stop 关闭总线并终止所有绑定应用生命周期的订阅。
type Runtime struct {
	mu sync.Mutex

	cfg *config.Config
	app *fx.App

	// 由 fx.Populate 填充
	bus       *eventbus.Bus
	lifecycle *lifecycle.Registry
	counters  *metrics.Counters

	logCloser io.Closer

	started bool
	closed  bool
}

// New 创建运行时
//
// 选项按顺序应用；配置解析失败或组件装配失败时返回错误。
func New(opts ...Option) (*Runtime, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	closer, err := setupLogging(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	rt := &Runtime{
		cfg:       cfg,
		logCloser: closer,
	}
	rt.app = buildFxApp(cfg, o, rt)
	if err := rt.app.Err(); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	return rt, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
//
// 示例：
//
//	rt, err := flowbus.Start(ctx,
//	    flowbus.WithPreset(flowbus.PresetProduction),
//	)
func Start(ctx context.Context, opts ...Option) (*Runtime, error) {
	rt, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := rt.Start(ctx); err != nil {
		_ = rt.Stop(context.Background())
		return nil, err
	}
	return rt, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动运行时
//
// 启动 Fx App，应用生命周期依次进入 Created、Started、Resumed。
// 停止后不能再次启动。
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	if r.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
	defer cancel()

	if err := r.app.Start(startCtx); err != nil {
		return fmt.Errorf("initialize failed: %w", err)
	}
	r.started = true

	logger.Info("运行时已启动",
		"implicitTypes", r.cfg.Bus.AllowImplicitTypes,
		"maxPending", r.cfg.Bus.MaxPending,
		"metrics", r.cfg.Metrics.Enable)
	return nil
}

// Stop 停止运行时
//
// 关闭事件总线（所有订阅以 ErrClosed 结束）并终止应用生命周期。
// 可重复调用；ctx 未设置截止时间时最多等待 15 秒。
func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	var err error
	if r.started {
		err = multierr.Append(err, r.app.Stop(ctx))
	} else {
		// 未启动时 Fx 不会执行停止钩子
		err = multierr.Append(err, r.bus.Close())
		r.lifecycle.Destroy()
	}

	stats := r.counters.Snapshot()
	logger.Info("运行时已停止",
		"posted", stats.Posted(),
		"delivered", stats.Delivered,
		"dropped", stats.Dropped(),
		"panics", stats.HandlerPanics)

	if r.logCloser != nil {
		err = multierr.Append(err, r.logCloser.Close())
	}
	return err
}

// Close 使用默认超时停止运行时
func (r *Runtime) Close() error {
	return r.Stop(context.Background())
}

// IsStarted 运行时是否处于运行状态
func (r *Runtime) IsStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.closed
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件访问
// ════════════════════════════════════════════════════════════════════════════

// Bus 返回事件总线
func (r *Runtime) Bus() *Bus {
	return r.bus
}

// Lifecycle 返回应用级生命周期
//
// 可作为订阅的 LifecycleOwner，使订阅随运行时停止而结束。
func (r *Runtime) Lifecycle() *Lifecycle {
	return r.lifecycle
}

// Metrics 返回当前指标快照
func (r *Runtime) Metrics() MetricsSnapshot {
	return r.counters.Snapshot()
}

// Config 返回运行时配置的副本
func (r *Runtime) Config() *config.Config {
	return config.CloneConfig(r.cfg)
}
