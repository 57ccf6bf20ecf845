package types

import (
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

// ContentStoredEvent 本地首次持久化某内容后发布
type ContentStoredEvent struct {
	Object ObjectInfo `json:"object"`
	// Source 为空表示本地上传，否则为拉取来源节点
	Source peer.ID `json:"source,omitempty"`
}

// PeerDiscoveredEvent 发现层首次将节点置为活跃时发布
type PeerDiscoveredEvent struct {
	Record PeerRecord `json:"record"`
}

// PeerExpiredEvent 节点记录过期被清扫时发布
type PeerExpiredEvent struct {
	Peer     peer.ID   `json:"peer"`
	LastSeen time.Time `json:"last_seen"`
}

// AnnouncementReceivedEvent 收到并验证通过的内容公告
type AnnouncementReceivedEvent struct {
	ID     ContentID `json:"id"`
	Holder peer.ID   `json:"holder"`
}
