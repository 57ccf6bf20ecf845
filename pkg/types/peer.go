package types

import (
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// PeerState 节点记录状态
type PeerState string

const (
	// PeerStateActive 最近收到过信标，可用于出站连接
	PeerStateActive PeerState = "active"
	// PeerStateExpired 超时未刷新，已从活跃集合移除
	PeerStateExpired PeerState = "expired"
)

// PeerRecord 发现层维护的瞬态节点记录
type PeerRecord struct {
	ID        peer.ID        `json:"id"`
	Addrs     []ma.Multiaddr `json:"-"`
	FirstSeen time.Time      `json:"first_seen"`
	LastSeen  time.Time      `json:"last_seen"`
	State     PeerState      `json:"state"`
}

// AddrInfo 转换为 libp2p 地址信息
func (r PeerRecord) AddrInfo() peer.AddrInfo {
	return peer.AddrInfo{ID: r.ID, Addrs: r.Addrs}
}

// AddrStrings 地址的文本形式
func (r PeerRecord) AddrStrings() []string {
	out := make([]string, 0, len(r.Addrs))
	for _, a := range r.Addrs {
		out = append(out, a.String())
	}
	return out
}

// Holder 某内容的已知持有者
type Holder struct {
	Peer          peer.ID   `json:"peer"`
	LastAnnounced time.Time `json:"last_announced"`
}
