// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/casnode/internal/config/api"
	chainconfig "github.com/weisyn/casnode/internal/config/chain"
	logconfig "github.com/weisyn/casnode/internal/config/log"
	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	replicationconfig "github.com/weisyn/casnode/internal/config/replication"
	storageconfig "github.com/weisyn/casnode/internal/config/storage"
)

// Provider 配置提供者接口
//
// 每个 Get* 方法返回已合并默认值、配置文件与环境变量覆盖的完整选项。
type Provider interface {
	// GetStorage 获取本地内容存储配置
	GetStorage() *storageconfig.StorageOptions

	// GetNode 获取节点网络配置（身份、监听地址、发现）
	GetNode() *nodeconfig.NodeOptions

	// GetReplication 获取复制/公告层配置
	GetReplication() *replicationconfig.ReplicationOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetChain 获取链配置（占位）
	GetChain() *chainconfig.ChainOptions

	// GetAppName 获取应用名称
	GetAppName() string
}
