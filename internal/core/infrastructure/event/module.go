// Package event 提供事件管理功能
package event

import (
	"go.uber.org/fx"

	eventInterface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Logger    log.Logger   `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus  eventInterface.EventBus  // 基础事件总线
	Publisher eventInterface.Publisher // 仅发布视图
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建事件总线并注册关停钩子
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "event")
	}
	bus := New(logger)

	input.Lifecycle.Append(fx.StopHook(bus.Stop))

	return ModuleOutput{
		EventBus:  bus,
		Publisher: bus,
	}
}
