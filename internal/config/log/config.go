// Package log 日志配置：级别、输出目标与 lumberjack 轮转参数
package log

import (
	"strings"

	"go.uber.org/zap/zapcore"

	configtypes "github.com/weisyn/casnode/pkg/types"
)

// LogOptions 合并后的日志配置
type LogOptions struct {
	Level     string `json:"level"`
	ToConsole bool   `json:"to_console"`
	// FilePath 为 stdout/stderr 或空时仅输出控制台
	FilePath string `json:"file_path"`

	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`
}

// Config 日志配置
type Config struct {
	options *LogOptions
}

// New 以默认值为底，叠加用户配置
func New(userConfig *configtypes.UserLogConfig) *Config {
	options := &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         defaultFilePath,
		MaxSizeMB:        defaultMaxSizeMB,
		MaxBackups:       defaultMaxBackups,
		MaxAgeDays:       defaultMaxAgeDays,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
	}
	if userConfig != nil {
		applyUserLogConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 包装已合并的选项（来自 config.Provider）
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func applyUserLogConfig(options *LogOptions, user *configtypes.UserLogConfig) {
	if user.Level != nil {
		options.Level = strings.ToLower(strings.TrimSpace(*user.Level))
	}
	if user.FilePath != nil {
		options.FilePath = *user.FilePath
		// 写文件时默认关闭控制台，除非显式打开
		options.ToConsole = isStdStream(options.FilePath)
	}
	if user.ToConsole != nil {
		options.ToConsole = *user.ToConsole
	}
	if user.MaxSizeMB != nil && *user.MaxSizeMB > 0 {
		options.MaxSizeMB = *user.MaxSizeMB
	}
	if user.MaxBackups != nil && *user.MaxBackups >= 0 {
		options.MaxBackups = *user.MaxBackups
	}
	if user.MaxAgeDays != nil && *user.MaxAgeDays >= 0 {
		options.MaxAgeDays = *user.MaxAgeDays
	}
	if user.Compress != nil {
		options.Compress = *user.Compress
	}
	if user.EnableCaller != nil {
		options.EnableCaller = *user.EnableCaller
	}
}

func isStdStream(path string) bool {
	return path == "" || path == "stdout" || path == "stderr"
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel 未知级别按 info 处理
func (c *Config) GetZapLevel() zapcore.Level {
	if level, ok := levels[c.options.Level]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// IsValidLevel 级别名是否可识别
func IsValidLevel(level string) bool {
	_, ok := levels[level]
	return ok
}

func (c *Config) IsConsoleEnabled() bool { return c.options.ToConsole }
func (c *Config) GetFilePath() string { return c.options.FilePath }

// IsFileEnabled 是否写入日志文件
func (c *Config) IsFileEnabled() bool { return !isStdStream(c.options.FilePath) }

func (c *Config) GetMaxSize() int { return c.options.MaxSizeMB }
func (c *Config) GetMaxBackups() int { return c.options.MaxBackups }
func (c *Config) GetMaxAge() int { return c.options.MaxAgeDays }
func (c *Config) IsCompressionEnabled() bool { return c.options.Compress }
func (c *Config) IsCallerEnabled() bool { return c.options.EnableCaller }
func (c *Config) IsStacktraceEnabled() bool { return c.options.EnableStacktrace }

// CreateFileEncoder 文件使用 JSON 编码，便于采集
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// CreateConsoleEncoder 控制台使用带颜色的文本编码
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	cfg := baseEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func baseEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
