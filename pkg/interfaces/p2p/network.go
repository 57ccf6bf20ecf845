package p2p

import (
	"context"

	"github.com/libp2p/go-libp2p/core/network"
	libpeer "github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
)

// StreamHandler 流处理器函数类型
// ctx 在节点关闭时取消；处理器负责关闭流
type StreamHandler func(ctx context.Context, s network.Stream)

// NetworkService 点对点传输抽象
//
// 复制层通过它打开直连流（拉取、查询应答），不直接依赖 libp2p 主机。
type NetworkService interface {
	// EnsureConnected 确保与目标节点连通（幂等）
	EnsureConnected(ctx context.Context, info libpeer.AddrInfo) error

	// NewStream 打开出站流
	NewStream(ctx context.Context, to libpeer.ID, protocolID protocol.ID) (network.Stream, error)

	// RegisterHandler 注册入站协议处理器
	RegisterHandler(protocolID protocol.ID, handler StreamHandler)

	// UnregisterHandler 注销协议处理器
	UnregisterHandler(protocolID protocol.ID)

	// ClosePeer 断开与节点的全部连接
	ClosePeer(id libpeer.ID) error
}
