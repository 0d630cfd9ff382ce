package types

// ============================================================================
//                              Channel - 投递通道
// ============================================================================

// Channel 投递通道
type Channel int

const (
	// ChannelTransient 瞬时通道：无缓冲，只有发射时已挂接的订阅者能收到
	ChannelTransient Channel = iota
	// ChannelSticky 粘性通道：缓冲最近一个信封，新订阅者挂接时立即重放
	ChannelSticky
)

// String 返回通道的字符串表示
func (c Channel) String() string {
	switch c {
	case ChannelTransient:
		return "transient"
	case ChannelSticky:
		return "sticky"
	default:
		return "unknown"
	}
}

// ChannelFor 根据 sticky 标志选择通道
func ChannelFor(sticky bool) Channel {
	if sticky {
		return ChannelSticky
	}
	return ChannelTransient
}

// ============================================================================
//                              LifecycleState - 生命周期状态
// ============================================================================

// LifecycleState 生命周期状态
//
// 状态之间存在全序：
//
//	Destroyed < Initialized < Created < Started < Resumed
//
// Destroyed 是终止状态，一旦到达不可离开。
type LifecycleState int

const (
	// StateDestroyed 已销毁（终止状态）
	StateDestroyed LifecycleState = iota
	// StateInitialized 已初始化，尚未创建
	StateInitialized
	// StateCreated 已创建
	StateCreated
	// StateStarted 已启动（可见）
	StateStarted
	// StateResumed 已恢复（前台活跃）
	StateResumed
)

// String 返回状态的字符串表示
func (s LifecycleState) String() string {
	switch s {
	case StateDestroyed:
		return "destroyed"
	case StateInitialized:
		return "initialized"
	case StateCreated:
		return "created"
	case StateStarted:
		return "started"
	case StateResumed:
		return "resumed"
	default:
		return "unknown"
	}
}

// IsTerminal 是否为终止状态
func (s LifecycleState) IsTerminal() bool {
	return s == StateDestroyed
}

// IsAtLeast 是否不低于指定状态
func (s LifecycleState) IsAtLeast(threshold LifecycleState) bool {
	return s >= threshold
}

// IsEligible 在给定阈值下是否允许投递
//
// 终止状态永远不允许投递。
func (s LifecycleState) IsEligible(threshold LifecycleState) bool {
	return !s.IsTerminal() && s.IsAtLeast(threshold)
}

// ParseLifecycleState 从字符串解析生命周期状态
func ParseLifecycleState(s string) (LifecycleState, bool) {
	switch s {
	case "destroyed":
		return StateDestroyed, true
	case "initialized", "":
		return StateInitialized, true
	case "created":
		return StateCreated, true
	case "started":
		return StateStarted, true
	case "resumed":
		return StateResumed, true
	default:
		return StateInitialized, false
	}
}
