package config

import (
	"os"
	"strings"

	"github.com/weisyn/casnode/internal/config/api"
	"github.com/weisyn/casnode/internal/config/chain"
	"github.com/weisyn/casnode/internal/config/log"
	"github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/internal/config/replication"
	"github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/types"
)

// 环境变量覆盖项（优先级高于配置文件）
const (
	EnvStoragePath   = "STORAGE_PATH"   // 对象文件根目录
	EnvNodeAddress   = "NODE_ADDRESS"   // libp2p 监听地址 host:port 或 multiaddr
	EnvAPIAddress    = "API_ADDRESS"    // HTTP 监听地址
	EnvNodeKeyPath   = "NODE_KEY_PATH"  // 身份私钥文件
	EnvBlockchainRPC = "BLOCKCHAIN_RPC" // 区块链 RPC 地址（占位）
	EnvLogLevel      = "LOG_LEVEL"      // 日志级别
)

const defaultAppName = "casnode"

// Provider 实现配置提供者接口
//
// 构造时一次性合并：内置默认值 → 配置文件 → 环境变量，
// 之后各 Get* 返回同一份选项实例。
type Provider struct {
	appName     string
	storage     *storage.StorageOptions
	node        *node.NodeOptions
	replication *replication.ReplicationOptions
	api         *api.APIOptions
	log         *log.LogOptions
	chain       *chain.ChainOptions
}

// 编译时校验
var _ config.Provider = (*Provider)(nil)

// LookupEnvFunc 环境变量查询函数
type LookupEnvFunc func(key string) (string, bool)

// NewProvider 创建配置提供者，环境变量取自进程环境
func NewProvider(appConfig *types.AppConfig) *Provider {
	return NewProviderWithEnv(appConfig, os.LookupEnv)
}

// NewProviderWithEnv 使用指定的环境变量来源创建配置提供者
func NewProviderWithEnv(appConfig *types.AppConfig, lookup LookupEnvFunc) *Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}

	p := &Provider{
		appName:     defaultAppName,
		storage:     storage.New(appConfig.Storage).GetOptions(),
		node:        node.New(appConfig.Node).GetOptions(),
		replication: replication.New(appConfig.Replication).GetOptions(),
		api:         api.New(appConfig.API).GetOptions(),
		log:         log.New(appConfig.Log).GetOptions(),
		chain:       chain.New(appConfig.Chain),
	}
	if appConfig.AppName != nil && *appConfig.AppName != "" {
		p.appName = *appConfig.AppName
	}

	p.applyEnvOverrides(lookup)
	return p
}

// applyEnvOverrides 应用环境变量覆盖
func (p *Provider) applyEnvOverrides(lookup LookupEnvFunc) {
	if v, ok := nonEmpty(lookup, EnvStoragePath); ok {
		p.storage.RootPath = v
	}
	if v, ok := nonEmpty(lookup, EnvNodeAddress); ok {
		p.node.Host.ListenAddresses = splitList(v)
	}
	if v, ok := nonEmpty(lookup, EnvAPIAddress); ok {
		p.api.HTTP.Address = v
	}
	if v, ok := nonEmpty(lookup, EnvNodeKeyPath); ok {
		p.node.Identity.KeyFile = v
	}
	if v, ok := nonEmpty(lookup, EnvBlockchainRPC); ok {
		p.chain.RPCEndpoint = v
	}
	if v, ok := nonEmpty(lookup, EnvLogLevel); ok {
		p.log.Level = strings.ToLower(v)
	}
}

func nonEmpty(lookup LookupEnvFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// splitList 支持逗号分隔的多个地址
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetStorage 获取本地内容存储配置
func (p *Provider) GetStorage() *storage.StorageOptions {
	return p.storage
}

// GetNode 获取节点网络配置
func (p *Provider) GetNode() *node.NodeOptions {
	return p.node
}

// GetReplication 获取复制层配置
func (p *Provider) GetReplication() *replication.ReplicationOptions {
	return p.replication
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return p.api
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return p.log
}

// GetChain 获取链配置（占位）
func (p *Provider) GetChain() *chain.ChainOptions {
	return p.chain
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	return p.appName
}
