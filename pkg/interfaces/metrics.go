// Package interfaces 定义 FlowBus 公共接口
//
// 本文件定义 BusReporter 接口，供事件总线上报运行指标。
package interfaces

import "github.com/dep2p/go-flowbus/pkg/types"

// DropReason 信封丢弃原因
type DropReason string

const (
	// DropInactive 生命周期非活跃（Drop 策略）
	DropInactive DropReason = "inactive"
	// DropOverflow 订阅者待投递队列已满
	DropOverflow DropReason = "overflow"
	// DropUnobserved 发射时没有任何订阅者挂接
	DropUnobserved DropReason = "unobserved"
)

// BusReporter 定义事件总线指标上报接口
type BusReporter interface {
	// Posted 记录一次发射
	Posted(ch types.Channel)

	// Delivered 记录一次成功投递（处理函数正常返回）
	Delivered()

	// Dropped 记录一次丢弃
	Dropped(reason DropReason)

	// Panicked 记录一次处理函数 panic
	Panicked()

	// SlowHandler 记录一次慢处理函数
	SlowHandler()

	// SubscriptionOpened 记录订阅创建
	SubscriptionOpened()

	// SubscriptionClosed 记录订阅结束
	SubscriptionClosed()
}
