// Package interfaces 定义 FlowBus 公共接口
//
// 本文件定义 LifecycleOwner 接口，事件总线只消费其中两种能力。
package interfaces

import "github.com/dep2p/go-flowbus/pkg/types"

// LifecycleOwner 定义外部生命周期来源
//
// 总线核心不依赖任何具体的生命周期实现，只需要：
//   - 按需查询当前状态
//   - 订阅状态变更通知（包括恰好一次的终止状态通知）
type LifecycleOwner interface {
	// CurrentState 返回当前状态，必须可同步调用
	CurrentState() types.LifecycleState

	// OnStateChange 注册状态变更回调，返回注销函数
	//
	// 回调中不得同步等待总线投递完成。
	OnStateChange(cb func(state types.LifecycleState)) (unregister func())
}
