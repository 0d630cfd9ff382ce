// Package mocks 提供统一的测试 Mock 实现
//
// # 核心 Mock
//
//   - MockLifecycleOwner: 模拟 interfaces.LifecycleOwner，可手动推进状态、发送过期通知
//   - MockReporter: 模拟 interfaces.BusReporter，记录各项计数
//   - MockEventBus: 模拟 interfaces.EventBus，记录调用并可覆盖方法
//
// # 使用示例
//
//	owner := mocks.NewMockLifecycleOwner(types.StateCreated)
//	sub, _ := eventbus.Subscribe(bus, handler, eventbus.WithLifecycle(owner))
//
//	owner.SetState(types.StateStarted)   // 改变状态并通知
//	owner.Notify(types.StateResumed)     // 只发送通知，不改变状态
package mocks
