package lifecycle

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// AppOwnerName 应用级注册表名称
const AppOwnerName = "app"

// ModuleResult Fx 模块导出结果
type ModuleResult struct {
	fx.Out

	// Registry 默认导出
	Registry *Registry
	// Owner 命名导出，供订阅绑定应用生命周期
	Owner pkgif.LifecycleOwner `name:"app_lifecycle"`
}

// provideRegistry 提供应用级 Registry 实例
func provideRegistry() ModuleResult {
	r := NewRegistry(AppOwnerName)
	return ModuleResult{
		Registry: r,
		Owner:    r,
	}
}

// Module 返回 Fx 模块
//
// 提供应用级生命周期注册表作为全局单例。
// 应用启动时依次推进到 Resumed，停止时终止，
// 绑定到它的订阅随应用一起结束。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(
			provideRegistry,
		),
		fx.Invoke(registerLifecycleHooks),
	)
}

// lifecycleHooksParams 生命周期钩子参数
type lifecycleHooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Registry  *Registry
}

// registerLifecycleHooks 注册生命周期钩子
func registerLifecycleHooks(params lifecycleHooksParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			for _, s := range []types.LifecycleState{types.StateCreated, types.StateStarted, types.StateResumed} {
				if err := params.Registry.MoveTo(s); err != nil {
					return err
				}
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			params.Registry.Destroy()
			return nil
		},
	})
}
