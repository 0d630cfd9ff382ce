package flowbus

import (
	"errors"

	"github.com/dep2p/go-flowbus/internal/core/eventbus"
	"github.com/dep2p/go-flowbus/internal/core/lifecycle"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 运行时错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 运行时未启动
	ErrNotStarted = errors.New("runtime not started")

	// ErrAlreadyStarted 运行时已启动
	ErrAlreadyStarted = errors.New("runtime already started")

	// ErrRuntimeClosed 运行时已关闭
	ErrRuntimeClosed = errors.New("runtime closed")

	// ────────────────────────────────────────────────────────────────────────
	// 事件总线错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrClosed 事件总线已关闭
	ErrClosed = eventbus.ErrClosed

	// ErrInvalidEvent 无效的事件（nil）
	ErrInvalidEvent = eventbus.ErrInvalidEvent

	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = eventbus.ErrInvalidEventType

	// ErrInvalidTypeID 无效的类型标识
	ErrInvalidTypeID = eventbus.ErrInvalidTypeID

	// ErrUnregisteredType 无法解析类型标识
	ErrUnregisteredType = eventbus.ErrUnregisteredType

	// ErrTypeConflict 类型标识冲突
	ErrTypeConflict = eventbus.ErrTypeConflict

	// ErrNilHandler 处理函数为 nil
	ErrNilHandler = eventbus.ErrNilHandler

	// ErrHandlerPanic 处理函数 panic
	ErrHandlerPanic = eventbus.ErrHandlerPanic

	// ErrPayloadMismatch 载荷类型与类型标识不符
	ErrPayloadMismatch = eventbus.ErrPayloadMismatch

	// ErrCleared 等待期间总线被 Clear
	ErrCleared = eventbus.ErrCleared

	// ErrDispatchFailed 分发过程中发生 panic
	ErrDispatchFailed = eventbus.ErrDispatchFailed

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrLifecycleDestroyed 订阅绑定的生命周期已终止
	ErrLifecycleDestroyed = eventbus.ErrLifecycleDestroyed

	// ErrDestroyed 生命周期注册表已销毁
	ErrDestroyed = lifecycle.ErrDestroyed

	// ErrInvalidState 无效的生命周期状态
	ErrInvalidState = lifecycle.ErrInvalidState
)

// PayloadMismatchError 载荷类型不符的详细错误
type PayloadMismatchError = eventbus.PayloadMismatchError
