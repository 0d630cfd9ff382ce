package types

// ============================================================================
//                              TypeID - 事件类型标识
// ============================================================================

// TypeID 事件类型标识
//
// 按值比较，跨独立编译单元稳定。
type TypeID string

// SentinelTypeID 哨兵信封使用的保留标识，不会与任何已注册类型匹配
const SentinelTypeID TypeID = ""

// IsValid 检查是否为可注册的类型标识
func (id TypeID) IsValid() bool {
	return id != SentinelTypeID
}

// String 返回字符串表示
func (id TypeID) String() string {
	if id == SentinelTypeID {
		return "<sentinel>"
	}
	return string(id)
}

// ============================================================================
//                              Envelope - 事件信封
// ============================================================================

// Envelope 事件信封
//
// 将类型标识与事件载荷配对，使多种事件共享同一投递通道。
// 构造后不可变。
type Envelope struct {
	// Type 事件类型标识
	Type TypeID

	// Payload 事件载荷
	Payload any

	// Channel 发射所用的通道
	Channel Channel

	// Seq 总线内的发射序号（由后台循环分配，仅用于诊断）
	Seq uint64
}

// NewEnvelope 创建事件信封
func NewEnvelope(typ TypeID, payload any, ch Channel) Envelope {
	return Envelope{Type: typ, Payload: payload, Channel: ch}
}

// SentinelEnvelope 创建 Clear 使用的哨兵信封
func SentinelEnvelope(ch Channel) Envelope {
	return Envelope{Type: SentinelTypeID, Channel: ch}
}

// IsSentinel 是否为哨兵信封
func (e Envelope) IsSentinel() bool {
	return e.Type == SentinelTypeID
}

// Matches 检查信封是否属于指定类型
//
// 哨兵信封不匹配任何类型。
func (e Envelope) Matches(id TypeID) bool {
	return !e.IsSentinel() && e.Type == id
}
