// Package interfaces 定义 FlowBus 的公共接口
//
// 接口文件按能力划分：
//   - eventbus.go   - EventBus / Subscription / Emission 以及发射、订阅选项
//   - lifecycle.go  - LifecycleOwner（外部生命周期来源，总线只消费其状态查询和变更通知）
//   - metrics.go    - BusReporter（运行指标上报）
//
// 实现位于 internal/core 下的同名目录：
//   - internal/core/eventbus   实现 EventBus
//   - internal/core/lifecycle  提供参考 LifecycleOwner 实现
//   - internal/core/metrics    实现 BusReporter
package interfaces
