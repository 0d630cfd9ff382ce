package flowbus

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-flowbus/config"
	"github.com/dep2p/go-flowbus/pkg/lib/log"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（二选一）
	config     *config.Config
	configFile string

	// 预设配置，叠加在基础配置之上
	preset string

	// 日志配置
	logFile  string
	logLevel string

	// 指标注册表，nil 时不注册 Prometheus 采集器
	registerer prometheus.Registerer

	// 时钟与 panic 回调
	clock        clock.Clock
	panicHandler PanicHandler

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// resolveConfig 按 基础配置 -> 预设 -> 单项覆盖 的顺序得到最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.config != nil && o.configFile != "":
		return nil, errors.New("WithConfig and WithConfigFile are mutually exclusive")
	case o.config != nil:
		cfg = config.CloneConfig(o.config)
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	if err := config.ApplyPreset(cfg, o.preset); err != nil {
		return nil, err
	}

	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用给定配置作为基础配置
//
// 配置会被复制，之后修改 cfg 不影响运行时。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从文件加载基础配置（.yaml / .yml / .json）
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("config file path is empty")
		}
		o.configFile = path
		return nil
	}
}

// WithPreset 在基础配置之上应用预设
//
// 可用预设见 AvailablePresets。
func WithPreset(name string) Option {
	return func(o *options) error {
		if !IsValidPreset(name) {
			return fmt.Errorf("unknown preset: %s", name)
		}
		o.preset = name
		return nil
	}
}

// WithLogFile 将日志写入滚动文件
//
// 示例：
//
//	rt, _ := flowbus.New(flowbus.WithLogFile("logs/flowbus.log"))
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// WithLogLevel 设置日志级别：debug / info / warn / error
func WithLogLevel(level string) Option {
	return func(o *options) error {
		if _, err := log.ParseLevel(level); err != nil {
			return err
		}
		o.logLevel = level
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件选项
// ════════════════════════════════════════════════════════════════════════════

// WithMetricsRegisterer 向 reg 注册 Prometheus 采集器
//
// 仅在配置的 metrics.enable 为 true 时生效，运行时停止时注销。
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithClock 替换运行时使用的时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithPanicHandler 设置处理函数 panic 回调
func WithPanicHandler(h PanicHandler) Option {
	return func(o *options) error {
		o.panicHandler = h
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
//
// 可用于在同一个 Fx 应用中注入依赖 EventBus 的组件。
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
