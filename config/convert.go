package config

import (
	"errors"
	"fmt"
	"time"
)

// 预设名称
const (
	// PresetDevelopment 开发预设
	PresetDevelopment = "development"

	// PresetProduction 生产预设
	PresetProduction = "production"

	// PresetStrict 严格预设
	PresetStrict = "strict"

	// PresetTest 测试预设
	PresetTest = "test"
)

// ApplyPreset 应用预设配置
//
// Preset 提供了针对不同场景调整过的配置组合，
// 在默认值之上覆盖少量字段。
//
// 支持的预设：
//   - "development": 允许隐式类型、debug 日志、周期性快照
//   - "production": 订阅者队列上限、json 日志
//   - "strict": 只接受显式注册或声明 EventType() 的类型
//   - "test": 允许隐式类型、关闭慢处理检测与指标
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case PresetDevelopment:
		applyDevelopmentPreset(cfg)
	case PresetProduction:
		applyProductionPreset(cfg)
	case PresetStrict:
		applyStrictPreset(cfg)
	case PresetTest:
		applyTestPreset(cfg)
	case "":
		// 空预设，不做任何操作
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}

// applyDevelopmentPreset 应用开发预设
func applyDevelopmentPreset(cfg *Config) {
	cfg.Bus.AllowImplicitTypes = true
	cfg.Bus.SlowHandlerThreshold = Duration(50 * time.Millisecond)

	cfg.Log.Level = "debug"

	cfg.Metrics.SnapshotInterval = Duration(30 * time.Second)
}

// applyProductionPreset 应用生产预设
//
// 慢消费者最多积压 4096 个信封，超出丢弃最新的。
func applyProductionPreset(cfg *Config) {
	cfg.Bus.AllowImplicitTypes = false
	cfg.Bus.MaxPending = 4096
	cfg.Bus.SlowHandlerThreshold = Duration(250 * time.Millisecond)
	cfg.Bus.WarnInterval = Duration(10 * time.Second)

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	cfg.Metrics.Enable = true
	cfg.Metrics.SnapshotInterval = Duration(time.Minute)
}

// applyStrictPreset 应用严格预设
func applyStrictPreset(cfg *Config) {
	cfg.Bus.AllowImplicitTypes = false
	cfg.Bus.DefaultActiveState = "started"
}

// applyTestPreset 应用测试预设
func applyTestPreset(cfg *Config) {
	cfg.Bus.AllowImplicitTypes = true
	cfg.Bus.SlowHandlerThreshold = 0
	cfg.Bus.WarnInterval = 0

	cfg.Log.Level = "warn"

	cfg.Metrics.Enable = false
	cfg.Metrics.SnapshotInterval = 0
}

// CloneConfig 克隆配置
//
// 子配置都是值类型，浅拷贝即可得到独立副本。
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	return &cloned
}
