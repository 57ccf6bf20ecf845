// Package node 聚合节点运行期上下文
//
// Node 在容器中只构造一次，持有身份、主机、存储、节点表与复制服务的引用，
// 供边界层查询节点状态；各组件的启动与关闭仍由各自模块的生命周期钩子负责，
// 关闭顺序与构造顺序相反。
package node

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/weisyn/casnode/internal/app/version"
	chainconfig "github.com/weisyn/casnode/internal/config/chain"
	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/content"
	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/internal/core/p2p/replication"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/types"
)

// Node 节点上下文
type Node struct {
	Identity    p2p.Identity
	Host        *host.Service
	Store       *cas.Store
	Peers       p2p.PeerDirectory
	Replication *replication.Service
	Content     *content.Service
	Gate        writegate.WriteGate
	Chain       *chainconfig.ChainOptions

	startedAt time.Time
}

// Info 节点概况
type Info struct {
	PeerID         peer.ID   `json:"peer_id"`
	Version        string    `json:"version"`
	ListenAddrs    []string  `json:"listen_addrs"`
	StorageRoot    string    `json:"storage_root"`
	ObjectCount    int       `json:"object_count"`
	StoredBytes    int64     `json:"stored_bytes"`
	ReadOnly       bool      `json:"read_only"`
	ActivePeers    int       `json:"active_peers"`
	ConnectedPeers int       `json:"connected_peers"`
	BytesIn        int64     `json:"bytes_in"`
	BytesOut       int64     `json:"bytes_out"`
	RPCEndpoint    string    `json:"rpc_endpoint"`
	StartedAt      time.Time `json:"started_at"`
	Uptime         string    `json:"uptime"`
}

// New 创建节点上下文
func New(n Node) *Node {
	n.startedAt = time.Now()
	return &n
}

// ID 节点标识
func (n *Node) ID() peer.ID {
	return n.Identity.PeerID()
}

// StartedAt 启动时间
func (n *Node) StartedAt() time.Time {
	return n.startedAt
}

// Info 汇总节点状态
func (n *Node) Info(ctx context.Context) (Info, error) {
	info := Info{
		PeerID:    n.ID(),
		Version:   version.GetVersion(),
		StartedAt: n.startedAt,
		Uptime:    time.Since(n.startedAt).Truncate(time.Second).String(),
	}
	if n.Host != nil {
		for _, a := range n.Host.Addrs() {
			info.ListenAddrs = append(info.ListenAddrs, a.String())
		}
		info.ConnectedPeers = len(n.Host.ConnectedPeers())
		info.BytesIn, info.BytesOut = n.Host.BandwidthTotals()
	}
	if n.Store != nil {
		info.StorageRoot = n.Store.Root()
		objects, err := n.Store.List(ctx)
		if err != nil {
			return Info{}, err
		}
		info.ObjectCount = len(objects)
		for _, o := range objects {
			info.StoredBytes += o.Size
		}
	}
	info.ReadOnly = n.ReadOnly()
	if n.Peers != nil {
		info.ActivePeers = n.Peers.Len()
	}
	if n.Chain != nil {
		info.RPCEndpoint = n.Chain.RPCEndpoint
	}
	return info, nil
}

// ReadOnly 本地存储是否拒绝写入
func (n *Node) ReadOnly() bool {
	return n.Gate != nil && n.Gate.IsReadOnly()
}

// ActivePeers 活跃节点记录
func (n *Node) ActivePeers() []types.PeerRecord {
	if n.Peers == nil {
		return nil
	}
	return n.Peers.Active()
}
