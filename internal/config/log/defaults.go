package log

import (
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel  = "info"
	defaultToConsole = true
	// 默认仅控制台输出
	defaultFilePath = "stdout"

	// lumberjack 轮转
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 10
	defaultMaxAgeDays = 30
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = false
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
