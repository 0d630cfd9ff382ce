package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-flowbus/pkg/types"
)

// BusConfig 事件总线配置
type BusConfig struct {
	// AllowImplicitTypes 允许未注册且未实现 EventType() 的类型
	// 使用包路径限定的 Go 类型名作为类型标识
	//
	// 默认关闭：无法解析类型标识时订阅立即失败。
	AllowImplicitTypes bool `json:"allow_implicit_types" yaml:"allow_implicit_types"`

	// MaxPending 单个订阅者待投递信封上限，0 表示不限
	//
	// 超出时丢弃最新信封并告警（慢消费者）。
	MaxPending int `json:"max_pending" yaml:"max_pending"`

	// SlowHandlerThreshold 慢处理函数告警阈值，0 表示不检测
	SlowHandlerThreshold Duration `json:"slow_handler_threshold" yaml:"slow_handler_threshold"`

	// WarnInterval 同类告警日志的最小间隔
	WarnInterval Duration `json:"warn_interval" yaml:"warn_interval"`

	// DefaultActiveState 生命周期订阅未指定 ActiveState 时使用的阈值
	//
	// 取值：initialized / created / started / resumed
	DefaultActiveState string `json:"default_active_state" yaml:"default_active_state"`
}

// DefaultBusConfig 返回默认事件总线配置
func DefaultBusConfig() BusConfig {
	return BusConfig{
		AllowImplicitTypes:   false,
		MaxPending:           0,
		SlowHandlerThreshold: Duration(100 * time.Millisecond),
		WarnInterval:         Duration(time.Second),
		DefaultActiveState:   types.StateInitialized.String(),
	}
}

// Validate 验证事件总线配置
func (c BusConfig) Validate() error {
	var err error
	if c.MaxPending < 0 {
		err = multierr.Append(err, fmt.Errorf("bus.max_pending must be >= 0, got %d", c.MaxPending))
	}
	if c.SlowHandlerThreshold < 0 {
		err = multierr.Append(err, errors.New("bus.slow_handler_threshold must be >= 0"))
	}
	if c.WarnInterval < 0 {
		err = multierr.Append(err, errors.New("bus.warn_interval must be >= 0"))
	}
	state, ok := types.ParseLifecycleState(c.DefaultActiveState)
	if !ok {
		err = multierr.Append(err, fmt.Errorf("bus.default_active_state: unknown state %q", c.DefaultActiveState))
	} else if state.IsTerminal() {
		err = multierr.Append(err, errors.New("bus.default_active_state cannot be destroyed"))
	}
	return err
}

// ActiveState 返回解析后的默认活跃状态
//
// 配置无效时退回最宽松的 StateInitialized。
func (c BusConfig) ActiveState() types.LifecycleState {
	state, ok := types.ParseLifecycleState(c.DefaultActiveState)
	if !ok || state.IsTerminal() {
		return types.StateInitialized
	}
	return state
}
