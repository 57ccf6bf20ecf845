package writegate

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
)

// ModuleInput 定义 WriteGate 模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 定义 WriteGate 模块的输出服务
type ModuleOutput struct {
	fx.Out

	WriteGate wgif.WriteGate
}

// Module 返回 WriteGate 模块
func Module() fx.Option {
	return fx.Module("writegate",
		fx.Provide(ProvideWriteGate),
	)
}

// ProvideWriteGate 提供进程内唯一的写入门闸
func ProvideWriteGate(input ModuleInput) ModuleOutput {
	if input.Logger != nil {
		input.Logger.With("module", "writegate").Debug("写入门闸已创建")
	}
	return ModuleOutput{WriteGate: New()}
}
