package discovery

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// ModuleInput 发现模块依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Host      *host.Service
	Publisher event.Publisher `optional:"true"`
	Logger    log.Logger      `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 发现模块输出
type ModuleOutput struct {
	fx.Out

	Service   *Service
	Directory p2p.PeerDirectory
}

// Module 返回发现模块
func Module() fx.Option {
	return fx.Module("p2p.discovery",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建发现服务并挂接生命周期
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "p2p.discovery")
	}

	svc := New(Params{
		Self:      input.Host.ID(),
		Host:      input.Host.Host(),
		Network:   input.Host,
		Config:    input.Provider.GetNode().Discovery,
		Publisher: input.Publisher,
		Logger:    logger,
	})

	input.Lifecycle.Append(fx.StartStopHook(svc.Start, svc.Stop))

	return ModuleOutput{Service: svc, Directory: svc.Table()}
}
