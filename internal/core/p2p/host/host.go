// Package host 构建并管理节点的 libp2p 主机
//
// 主机只负责传输：TCP + Noise/TLS + yamux。节点发现与内容复制
// 在各自的包中基于本包暴露的 NetworkService 实现。
package host

import (
	"context"
	"fmt"
	"sync"

	libp2p "github.com/libp2p/go-libp2p"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// Service libp2p 主机封装
type Service struct {
	host   lphost.Host
	bw     *metrics.BandwidthCounter
	logger log.Logger

	// ctx 在 Close 时取消，传给入站流处理器
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

var _ p2p.NetworkService = (*Service)(nil)

// New 以节点身份创建 libp2p 主机并开始监听
func New(cfg *nodeconfig.NodeOptions, id p2p.Identity, logger log.Logger) (*Service, error) {
	if cfg == nil {
		cfg = nodeconfig.New(nil).GetOptions()
	}
	listen, err := ParseListenAddrs(cfg.Host.ListenAddresses)
	if err != nil {
		return nil, err
	}

	bw := metrics.NewBandwidthCounter()
	h, err := libp2p.New(buildOptions(cfg, id, listen, bw)...)
	if err != nil {
		return nil, fmt.Errorf("create libp2p host: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		host:   h,
		bw:     bw,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	h.Network().Notify(newConnNotifiee(logger))

	if logger != nil {
		logger.Infof("P2P主机已启动: id=%s addrs=%v", h.ID(), h.Addrs())
	}
	return s, nil
}

// Host 返回底层 libp2p 主机
func (s *Service) Host() lphost.Host {
	return s.host
}

// ID 本节点标识
func (s *Service) ID() peer.ID {
	return s.host.ID()
}

// Addrs 带 /p2p/<id> 后缀的完整拨号地址
func (s *Service) Addrs() []ma.Multiaddr {
	info := peer.AddrInfo{ID: s.host.ID(), Addrs: s.host.Addrs()}
	full, err := peer.AddrInfoToP2pAddrs(&info)
	if err != nil {
		return s.host.Addrs()
	}
	return full
}

// ConnectedPeers 当前存在连接的节点
func (s *Service) ConnectedPeers() []peer.ID {
	return s.host.Network().Peers()
}

// BandwidthTotals 累计入站/出站字节数
func (s *Service) BandwidthTotals() (in, out int64) {
	stats := s.bw.GetBandwidthTotals()
	return stats.TotalIn, stats.TotalOut
}

// EnsureConnected 确保与目标节点连通
func (s *Service) EnsureConnected(ctx context.Context, info peer.AddrInfo) error {
	if info.ID == s.host.ID() {
		return nil
	}
	if s.host.Network().Connectedness(info.ID) == network.Connected {
		return nil
	}
	if len(info.Addrs) > 0 {
		s.host.Peerstore().AddAddrs(info.ID, info.Addrs, peerstoreAddrTTL)
	}
	if err := s.host.Connect(ctx, info); err != nil {
		return fmt.Errorf("connect %s: %w", info.ID, err)
	}
	return nil
}

// NewStream 打开出站流
func (s *Service) NewStream(ctx context.Context, to peer.ID, protocolID protocol.ID) (network.Stream, error) {
	st, err := s.host.NewStream(ctx, to, protocolID)
	if err != nil {
		return nil, fmt.Errorf("open stream %s to %s: %w", protocolID, to, err)
	}
	return st, nil
}

// RegisterHandler 注册入站协议处理器
func (s *Service) RegisterHandler(protocolID protocol.ID, handler p2p.StreamHandler) {
	s.host.SetStreamHandler(protocolID, func(st network.Stream) {
		handler(s.ctx, st)
	})
}

// UnregisterHandler 注销协议处理器
func (s *Service) UnregisterHandler(protocolID protocol.ID) {
	s.host.RemoveStreamHandler(protocolID)
}

// ClosePeer 断开与节点的全部连接
func (s *Service) ClosePeer(id peer.ID) error {
	return s.host.Network().ClosePeer(id)
}

// Close 关闭主机，可重复调用
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.host.Close()
		if s.logger != nil {
			s.logger.Info("P2P主机已关闭")
		}
	})
	return s.closeErr
}
