package p2p

import (
	"context"

	"github.com/weisyn/casnode/pkg/types"
)

// Resolver 网络内容解析
type Resolver interface {
	// Resolve 在网络中查询并拉取内容，验证哈希后写入本地存储
	// 超时、取消或无人应答时返回 replication.ErrContentNotFound
	Resolve(ctx context.Context, id types.ContentID) ([]byte, error)

	// Holders 已知持有该内容的节点（仅供参考，可能过时）
	Holders(id types.ContentID) []types.Holder
}
