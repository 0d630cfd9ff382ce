package flowbus

import (
	"github.com/dep2p/go-flowbus/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置常量
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量
const (
	// PresetDevelopment 开发预设名称
	PresetDevelopment = config.PresetDevelopment

	// PresetProduction 生产预设名称
	PresetProduction = config.PresetProduction

	// PresetStrict 严格预设名称
	PresetStrict = config.PresetStrict

	// PresetTest 测试预设名称
	PresetTest = config.PresetTest
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置获取
// ════════════════════════════════════════════════════════════════════════════

// GetConfigByPreset 获取预设对应的完整配置
//
// 未知预设返回 nil。
//
// 示例：
//
//	cfg := flowbus.GetConfigByPreset(flowbus.PresetProduction)
//	cfg.Bus.MaxPending = 1024
//	rt, err := flowbus.New(flowbus.WithConfig(cfg))
func GetConfigByPreset(name string) *config.Config {
	cfg := config.NewConfig()
	if err := config.ApplyPreset(cfg, name); err != nil {
		return nil
	}
	return cfg
}

// GetDefaultConfig 获取默认配置
func GetDefaultConfig() *config.Config {
	return config.NewConfig()
}

// PresetInfo 预设信息
type PresetInfo struct {
	// Name 预设名称
	Name string

	// Description 预设描述
	Description string

	// UseCase 适用场景
	UseCase string
}

// AvailablePresets 返回所有可用预设
func AvailablePresets() []PresetInfo {
	return []PresetInfo{
		{
			Name:        PresetDevelopment,
			Description: "允许隐式类型，debug 日志，周期性指标快照",
			UseCase:     "本地开发、调试",
		},
		{
			Name:        PresetProduction,
			Description: "限制订阅者积压，json 日志，每分钟指标快照",
			UseCase:     "长期运行的服务",
		},
		{
			Name:        PresetStrict,
			Description: "只接受显式注册的类型，生命周期订阅默认需要 Started",
			UseCase:     "类型标识需要稳定的多模块应用",
		},
		{
			Name:        PresetTest,
			Description: "允许隐式类型，关闭慢处理检测和指标",
			UseCase:     "单元测试",
		},
	}
}

// IsValidPreset 检查预设名称是否有效
func IsValidPreset(name string) bool {
	for _, p := range AvailablePresets() {
		if p.Name == name {
			return true
		}
	}
	return false
}
