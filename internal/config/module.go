// Package config 提供应用配置管理功能
package config

import (
	"fmt"

	apiconfig "github.com/weisyn/casnode/internal/config/api"
	chainconfig "github.com/weisyn/casnode/internal/config/chain"
	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	replicationconfig "github.com/weisyn/casnode/internal/config/replication"
	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			// 提供具体的配置类型用于依赖注入
			func(provider config.Provider) *storageconfig.StorageOptions {
				return provider.GetStorage()
			},
			func(provider config.Provider) *nodeconfig.NodeOptions {
				return provider.GetNode()
			},
			func(provider config.Provider) *replicationconfig.ReplicationOptions {
				return provider.GetReplication()
			},
			func(provider config.Provider) *apiconfig.APIOptions {
				return provider.GetAPI()
			},
			func(provider config.Provider) *chainconfig.ChainOptions {
				return provider.GetChain()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	// 从应用配置选项获取用户配置
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	provider := NewProvider(appConfig)
	if err := provider.Validate(); err != nil {
		return ConfigOutput{}, fmt.Errorf("配置校验失败: %w", err)
	}

	return ConfigOutput{
		Provider: provider,
	}, nil
}
