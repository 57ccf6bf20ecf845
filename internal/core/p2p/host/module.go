package host

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// ModuleInput 主机模块依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Identity  p2p.Identity
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 主机模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
	Network p2p.NetworkService
}

// Module 返回主机模块
func Module() fx.Option {
	return fx.Module("p2p.host",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建 libp2p 主机；关停时最后关闭
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "p2p.host")
	}

	svc, err := New(input.Provider.GetNode(), input.Identity, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close()
		},
	})

	return ModuleOutput{Service: svc, Network: svc}, nil
}
