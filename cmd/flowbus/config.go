package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-flowbus"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// 环境变量名称
const (
	envPrefix   = "FLOWBUS_"
	envConfig   = envPrefix + "CONFIG"
	envPreset   = envPrefix + "PRESET"
	envLogFile  = envPrefix + "LOG_FILE"
	envLogLevel = envPrefix + "LOG_LEVEL"
)

// cliSettings 命令行可覆盖的设置
type cliSettings struct {
	configFile string
	preset     string
	logFile    string
	logLevel   string
}

// applyEnvOverrides 用环境变量补全未在命令行指定的设置
//
// 命令行参数优先于环境变量。支持的环境变量：
//   - FLOWBUS_CONFIG: 配置文件路径
//   - FLOWBUS_PRESET: 预设名称
//   - FLOWBUS_LOG_FILE: 日志文件路径
//   - FLOWBUS_LOG_LEVEL: 日志级别
func applyEnvOverrides(s *cliSettings, getenv func(string) string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = getenv(key)
		}
	}
	fill(&s.configFile, envConfig)
	fill(&s.preset, envPreset)
	fill(&s.logFile, envLogFile)
	fill(&s.logLevel, envLogLevel)
}

// options 转换为运行时选项
func (s cliSettings) options(registry *prometheus.Registry) ([]flowbus.Option, error) {
	var opts []flowbus.Option

	if s.configFile != "" {
		opts = append(opts, flowbus.WithConfigFile(s.configFile))
	}
	if s.preset != "" {
		if !flowbus.IsValidPreset(s.preset) {
			return nil, fmt.Errorf("unknown preset %q", s.preset)
		}
		opts = append(opts, flowbus.WithPreset(s.preset))
	}
	if s.logFile != "" {
		opts = append(opts, flowbus.WithLogFile(s.logFile))
	}
	if s.logLevel != "" {
		opts = append(opts, flowbus.WithLogLevel(s.logLevel))
	}
	if registry != nil {
		opts = append(opts, flowbus.WithMetricsRegisterer(registry))
	}
	return opts, nil
}
