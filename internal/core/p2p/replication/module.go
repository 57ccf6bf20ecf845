package replication

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
)

// ModuleInput 复制模块依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Identity  p2p.Identity
	Host      *host.Service
	Peers     p2p.PeerDirectory
	Store     storage.ContentStore
	Addresser storage.Addresser
	EventBus  event.EventBus  `optional:"true"`
	Publisher event.Publisher `optional:"true"`
	Logger    log.Logger      `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 复制模块输出
type ModuleOutput struct {
	fx.Out

	Service  *Service
	Resolver p2p.Resolver
}

// Module 返回复制模块
func Module() fx.Option {
	return fx.Module("p2p.replication",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建复制服务并挂接生命周期
func ProvideServices(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "p2p.replication")
	}

	svc := New(Params{
		Identity:      input.Identity,
		Host:          input.Host.Host(),
		Network:       input.Host,
		Peers:         input.Peers,
		Store:         input.Store,
		Addresser:     input.Addresser,
		Config:        input.Provider.GetReplication(),
		MaxObjectSize: input.Provider.GetStorage().MaxObjectSize,
		Bus:           input.EventBus,
		Publisher:     input.Publisher,
		Logger:        logger,
	})

	input.Lifecycle.Append(fx.StartStopHook(svc.Start, svc.Stop))

	return ModuleOutput{Service: svc, Resolver: svc}
}
