// Package types 定义 FlowBus 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 flowbus 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - envelope.go  - TypeID, Envelope（事件信封）
//   - enums.go     - Channel（投递通道）, LifecycleState（生命周期状态）
//
// # 类型标识
//
// TypeID 是事件类型的稳定字符串标识，投递时只做值比较，
// 不依赖反射得到的类型句柄。空 TypeID 保留给 Clear 哨兵信封。
package types
