// Package chain 提供区块链 RPC 占位配置
//
// 核心存储与复制逻辑不使用该配置，仅通过节点信息接口对外展示。
package chain

import "github.com/weisyn/casnode/pkg/types"

const defaultRPCEndpoint = "https://api.mainnet-beta.solana.com"

// ChainOptions 链配置选项
type ChainOptions struct {
	RPCEndpoint string `json:"rpc_endpoint"`
}

// New 创建链配置
func New(userConfig *types.UserChainConfig) *ChainOptions {
	options := &ChainOptions{RPCEndpoint: defaultRPCEndpoint}
	if userConfig != nil && userConfig.RPCEndpoint != nil && *userConfig.RPCEndpoint != "" {
		options.RPCEndpoint = *userConfig.RPCEndpoint
	}
	return options
}
