package log

import (
	"context"
	"fmt"

	logconfig "github.com/weisyn/casnode/internal/config/log"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	logInterface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型（供 gin 中间件等使用）
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置初始化日志记录器
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger, err := New(logconfig.NewFromOptions(params.Provider.GetLog()))
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("根据用户配置创建日志记录器失败: %w", err)
	}

	// 替换掉 init() 时用默认配置创建的全局日志器
	SetLogger(logger)

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stdout/stderr 上的 Sync 在部分平台返回 EINVAL，忽略
			_ = logger.Sync()
			return nil
		},
	})

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}

// NewModuleLogger 创建带 module 字段的 logger
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	return OrGlobal(baseLogger).With("module", module)
}
