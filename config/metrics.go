package config

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"
)

var metricNamespaceRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否注册 Prometheus 采集器
	Enable bool `json:"enable" yaml:"enable"`

	// Namespace Prometheus 指标命名空间
	Namespace string `json:"namespace" yaml:"namespace"`

	// SnapshotInterval 周期性输出指标快照日志的间隔，0 表示不输出
	SnapshotInterval Duration `json:"snapshot_interval" yaml:"snapshot_interval"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enable:    true,
		Namespace: "flowbus",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	var err error
	if c.Enable && !metricNamespaceRe.MatchString(c.Namespace) {
		err = multierr.Append(err, fmt.Errorf("metrics.namespace %q is not a valid metric name prefix", c.Namespace))
	}
	if c.SnapshotInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("metrics.snapshot_interval must be >= 0, got %s", c.SnapshotInterval))
	}
	return err
}
