// Package eventbus 实现事件总线
package eventbus

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-flowbus/config"
	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Config   *config.Config    `optional:"true"`
	Reporter pkgif.BusReporter `optional:"true"`
	Clock    clock.Clock       `optional:"true"`
	Panic    PanicHandler      `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	EventBus pkgif.EventBus
	Bus      *Bus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) Result {
	opts := []Option{
		WithReporter(p.Reporter),
		WithClock(p.Clock),
		WithPanicHandler(p.Panic),
	}
	if p.Config != nil {
		opts = append(opts, WithConfig(p.Config.Bus))
	}

	bus := NewBus(opts...)
	return Result{
		EventBus: bus,
		Bus:      bus,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Debug("事件总线已启动")
			return nil
		},
		OnStop: func(_ context.Context) error {
			return input.Bus.Close()
		},
	})
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "事件总线模块，提供瞬时/粘性双通道、类型过滤与生命周期门控的发布订阅"
)
