package content

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
)

// ModuleInput 内容服务依赖
type ModuleInput struct {
	fx.In

	Store    storage.ContentStore
	Resolver p2p.Resolver `optional:"true"`
	Logger   log.Logger   `optional:"true"`
}

// Module 返回内容服务模块
func Module() fx.Option {
	return fx.Module("content",
		fx.Provide(func(input ModuleInput) *Service {
			var logger log.Logger
			if input.Logger != nil {
				logger = input.Logger.With("module", "content")
			}
			return New(input.Store, input.Resolver, logger)
		}),
	)
}
