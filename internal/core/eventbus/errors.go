package eventbus

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dep2p/go-flowbus/pkg/types"
)

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus closed")
	// ErrInvalidEvent 无效的事件（nil）
	ErrInvalidEvent = errors.New("invalid event")
	// ErrInvalidEventType 无效的事件类型（nil 或接口类型）
	ErrInvalidEventType = errors.New("invalid event type")
	// ErrInvalidTypeID 无效的类型标识（空标识保留给哨兵）
	ErrInvalidTypeID = errors.New("invalid type id")
	// ErrUnregisteredType 无法为事件类型解析出类型标识
	ErrUnregisteredType = errors.New("unregistered event type")
	// ErrTypeConflict 同一类型标识绑定了不同的 Go 类型
	ErrTypeConflict = errors.New("event type id conflict")
	// ErrNilHandler 处理函数为 nil
	ErrNilHandler = errors.New("nil event handler")
	// ErrLifecycleDestroyed 生命周期已到达终止状态
	ErrLifecycleDestroyed = errors.New("lifecycle destroyed")
	// ErrHandlerPanic 处理函数 panic，订阅已拆除
	ErrHandlerPanic = errors.New("event handler panicked")
	// ErrPayloadMismatch 类型标识匹配但载荷类型不符（类型解析缺陷）
	ErrPayloadMismatch = errors.New("event payload does not match its type id")
	// ErrCleared 等待期间总线被 Clear
	ErrCleared = errors.New("eventbus cleared")
	// ErrDispatchFailed 分发过程中发生 panic，发射未完成
	ErrDispatchFailed = errors.New("emission dispatch failed")
)

// PayloadMismatchError 载荷类型不符
//
// 类型标识匹配后载荷断言失败说明类型解析存在缺陷，
// 作为订阅内的致命错误处理：订阅被拆除，不会继续投递。
type PayloadMismatchError struct {
	TypeID  types.TypeID
	Want    reflect.Type
	Payload any
}

func (e *PayloadMismatchError) Error() string {
	return fmt.Sprintf("%s: type id %s carries %T, want %s", ErrPayloadMismatch, e.TypeID, e.Payload, e.Want)
}

// Unwrap 支持 errors.Is(err, ErrPayloadMismatch)
func (e *PayloadMismatchError) Unwrap() error {
	return ErrPayloadMismatch
}
