package identity

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// ModuleInput 身份模块依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger `optional:"true"`
}

// ModuleOutput 身份模块输出
type ModuleOutput struct {
	fx.Out

	Service  *Service
	Identity p2p.Identity
}

// Module 返回身份模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 加载或生成节点身份，失败时终止启动
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "identity")
	}
	svc, err := LoadOrCreate(input.Provider.GetNode().Identity, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Service: svc, Identity: svc}, nil
}
