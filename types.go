package flowbus

import (
	"github.com/dep2p/go-flowbus/internal/core/eventbus"
	"github.com/dep2p/go-flowbus/internal/core/metrics"
	pkgif "github.com/dep2p/go-flowbus/pkg/interfaces"
	"github.com/dep2p/go-flowbus/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// EventBus 事件总线
	EventBus = pkgif.EventBus

	// Subscription 事件订阅
	Subscription = pkgif.Subscription

	// Emission 一次发射的句柄
	Emission = pkgif.Emission

	// EnvelopeHandler 信封处理函数
	EnvelopeHandler = pkgif.EnvelopeHandler

	// LifecycleOwner 生命周期来源
	LifecycleOwner = pkgif.LifecycleOwner

	// TypeNamer 声明自身类型标识的事件
	TypeNamer = pkgif.TypeNamer

	// PostOpt 发射选项
	PostOpt = pkgif.PostOpt

	// SubscriptionOpt 订阅选项
	SubscriptionOpt = pkgif.SubscriptionOpt

	// Envelope 事件信封
	Envelope = types.Envelope

	// TypeID 类型标识
	TypeID = types.TypeID

	// Channel 投递通道
	Channel = types.Channel

	// LifecycleState 生命周期状态
	LifecycleState = types.LifecycleState

	// PanicInfo 处理函数 panic 信息
	PanicInfo = eventbus.PanicInfo

	// PanicHandler 处理函数 panic 回调
	PanicHandler = eventbus.PanicHandler

	// BusStats 事件总线内部状态
	BusStats = eventbus.Stats

	// MetricsSnapshot 指标快照
	MetricsSnapshot = metrics.Snapshot
)

// 通道
const (
	ChannelTransient = types.ChannelTransient
	ChannelSticky    = types.ChannelSticky
)

// 生命周期状态
const (
	StateDestroyed   = types.StateDestroyed
	StateInitialized = types.StateInitialized
	StateCreated     = types.StateCreated
	StateStarted     = types.StateStarted
	StateResumed     = types.StateResumed
)
