package p2p

import (
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/weisyn/casnode/pkg/types"
)

// PeerDirectory 活跃节点只读视图
//
// 过期（超过 TTL 未刷新）的记录永远不会出现在返回结果中，
// 出站连接只能面向此视图中的节点。
type PeerDirectory interface {
	// Active 当前活跃节点记录
	Active() []types.PeerRecord
	// IsActive 节点是否活跃
	IsActive(id peer.ID) bool
	// Get 获取活跃节点记录
	Get(id peer.ID) (types.PeerRecord, bool)
	// Len 活跃节点数
	Len() int
}
