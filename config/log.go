package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug / info / warn / error
	Level string `json:"level" yaml:"level"`

	// Format 日志格式：text / json
	Format string `json:"format" yaml:"format"`

	// File 日志文件路径，为空时输出到 stderr
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// MaxSizeMB 单个日志文件上限（MB）
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups 保留的旧日志文件数
	MaxBackups int `json:"max_backups" yaml:"max_backups"`

	// MaxAgeDays 旧日志文件保留天数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	var err error
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level: unknown level %q", c.Level))
	}
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format: unknown format %q", c.Format))
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		err = multierr.Append(err, errors.New("log rotation limits must be >= 0"))
	}
	return err
}
