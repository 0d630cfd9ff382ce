package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dep2p/go-flowbus/pkg/types"
)

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 负数的队列上限或时长 -> 使用默认值
//   - 未知或终止的默认活跃状态 -> 使用默认值
//   - 空的日志级别 / 格式 -> 使用默认值
//   - 启用指标但命名空间为空 -> 使用默认命名空间
//
// 返回修复后的配置或错误。
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	defBus := DefaultBusConfig()
	if c.Bus.MaxPending < 0 {
		c.Bus.MaxPending = defBus.MaxPending
	}
	if c.Bus.SlowHandlerThreshold < 0 {
		c.Bus.SlowHandlerThreshold = defBus.SlowHandlerThreshold
	}
	if c.Bus.WarnInterval < 0 {
		c.Bus.WarnInterval = defBus.WarnInterval
	}
	if state, ok := types.ParseLifecycleState(c.Bus.DefaultActiveState); !ok || state.IsTerminal() {
		c.Bus.DefaultActiveState = defBus.DefaultActiveState
	}

	defLog := DefaultLogConfig()
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defLog.Level
	}
	if strings.TrimSpace(c.Log.Format) == "" {
		c.Log.Format = defLog.Format
	}

	if c.Metrics.Enable && c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}
	if c.Metrics.SnapshotInterval < 0 {
		c.Metrics.SnapshotInterval = 0
	}

	// 验证修复后的配置
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}

	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}
