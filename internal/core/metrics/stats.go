package metrics

// Snapshot 事件总线指标快照
type Snapshot struct {
	PostedTransient int64 `json:"postedTransient"` // 瞬时通道发射数
	PostedSticky    int64 `json:"postedSticky"`    // 粘性通道发射数
	Delivered       int64 `json:"delivered"`       // 处理函数成功返回次数

	DroppedInactive   int64 `json:"droppedInactive"`   // 生命周期非活跃丢弃
	DroppedOverflow   int64 `json:"droppedOverflow"`   // 收件箱溢出丢弃
	DroppedUnobserved int64 `json:"droppedUnobserved"` // 瞬时通道无订阅者

	HandlerPanics       int64 `json:"handlerPanics"`       // 处理函数 panic 次数
	SlowHandlers        int64 `json:"slowHandlers"`        // 慢处理次数
	ActiveSubscriptions int64 `json:"activeSubscriptions"` // 活跃订阅数

	PostRate float64 `json:"postRate"` // 最近 60 秒平均每秒发射数
}

// Posted 返回两条通道的发射总数
func (s Snapshot) Posted() int64 {
	return s.PostedTransient + s.PostedSticky
}

// Dropped 返回各原因的丢弃总数
func (s Snapshot) Dropped() int64 {
	return s.DroppedInactive + s.DroppedOverflow + s.DroppedUnobserved
}
