// Package discovery 实现局域网节点发现
//
// mDNS 通知器只负责把信标放进有界通道，单个事件循环串行处理：
// 更新节点表、发布发现事件、触发有时限的直连。信标周期到达时重启
// mDNS 服务，使邻居重新浏览并刷新本节点记录；清扫周期到达时移除
// 超过 TTL 未刷新的记录并发布过期事件。
package discovery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	mdns "github.com/libp2p/go-libp2p/p2p/discovery/mdns"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/types"
)

// ErrAlreadyStarted 重复启动
var ErrAlreadyStarted = errors.New("发现服务已启动")

// 直连失败后的退避参数
const (
	connectBackoffBase = 2 * time.Second
	connectBackoffMax  = time.Minute
)

// Params 发现服务依赖
type Params struct {
	Self      peer.ID
	Host      lphost.Host        // mDNS 需要；为空时不启动 mDNS
	Network   p2p.NetworkService // 为空时不主动直连
	Config    nodeconfig.DiscoveryConfig
	Clock     clock.Clock
	Publisher event.Publisher
	Logger    logiface.Logger
}

// Service 发现服务
type Service struct {
	self      peer.ID
	host      lphost.Host
	network   p2p.NetworkService
	cfg       nodeconfig.DiscoveryConfig
	clock     clock.Clock
	table     *PeerTable
	publisher event.Publisher
	logger    logiface.Logger

	beacons chan peer.AddrInfo

	mdnsMu  sync.Mutex
	mdnsSvc mdns.Service

	connMu   sync.Mutex
	inflight map[peer.ID]struct{}
	backoff  *dialBackoff

	runMu   sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New 创建发现服务
func New(p Params) *Service {
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	queue := p.Config.BeaconQueueSize
	if queue <= 0 {
		queue = 64
	}
	return &Service{
		self:      p.Self,
		host:      p.Host,
		network:   p.Network,
		cfg:       p.Config,
		clock:     p.Clock,
		table:     NewPeerTable(p.Config.PeerTTL, p.Clock),
		publisher: p.Publisher,
		logger:    p.Logger,
		beacons:   make(chan peer.AddrInfo, queue),
		inflight:  make(map[peer.ID]struct{}),
		backoff:   newDialBackoff(connectBackoffBase, connectBackoffMax, 0.2),
	}
}

// Table 节点记录表
func (s *Service) Table() *PeerTable {
	return s.table
}

// HandlePeerFound 实现 mdns.Notifee；只做非阻塞入队
func (s *Service) HandlePeerFound(info peer.AddrInfo) {
	if info.ID == s.self {
		beaconsTotal.WithLabelValues("self").Inc()
		return
	}
	select {
	case s.beacons <- info:
	default:
		beaconsTotal.WithLabelValues("dropped").Inc()
		s.logWarnf("信标队列已满，丢弃来自 %s 的信标", info.ID)
	}
}

// Start 启动事件循环与 mDNS
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.started = true

	if s.cfg.MDNS.Enabled && s.host != nil {
		if err := s.restartMDNS(s.ctx); err != nil {
			// mDNS 不可用时节点退化为孤立节点，不阻止启动
			s.logWarnf("mDNS 启动失败: %v", err)
		}
	}

	s.wg.Add(1)
	go s.loop(s.ctx)

	s.logInfof("发现服务已启动: mdns=%t service=%s beacon=%s ttl=%s",
		s.cfg.MDNS.Enabled, s.cfg.MDNS.ServiceName, s.cfg.BeaconInterval, s.cfg.PeerTTL)
	return nil
}

// Stop 停止事件循环与 mDNS，等待所有后台协程退出
func (s *Service) Stop(ctx context.Context) error {
	s.runMu.Lock()
	if !s.started {
		s.runMu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	s.runMu.Unlock()

	s.closeMDNS()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) loop(ctx context.Context) {
	defer s.wg.Done()

	sweep := s.clock.Ticker(positive(s.cfg.SweepInterval, 5*time.Second))
	defer sweep.Stop()

	var beaconC <-chan time.Time
	if s.cfg.MDNS.Enabled && s.host != nil {
		beacon := s.clock.Ticker(jitter(positive(s.cfg.BeaconInterval, 10*time.Second), 0.1))
		defer beacon.Stop()
		beaconC = beacon.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case info := <-s.beacons:
			s.handleBeacon(ctx, info)
		case <-beaconC:
			if err := s.restartMDNS(ctx); err != nil {
				s.logWarnf("mDNS 重新发布失败: %v", err)
			}
		case <-sweep.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) handleBeacon(ctx context.Context, info peer.AddrInfo) {
	beaconsTotal.WithLabelValues("accepted").Inc()

	rec, isNew := s.table.Observe(info)
	activePeersGauge.Set(float64(s.table.Len()))
	if isNew {
		s.logInfof("发现节点: %s addrs=%v", rec.ID, rec.AddrStrings())
		event.PublishWithContext(s.publisher, ctx, event.EventTypePeerDiscovered, &types.PeerDiscoveredEvent{Record: rec})
	}

	s.connect(ctx, rec.AddrInfo())
}

// connect 在独立协程中发起有时限的直连，同一节点同时最多一个
func (s *Service) connect(ctx context.Context, info peer.AddrInfo) {
	if s.network == nil {
		return
	}
	now := s.clock.Now()

	s.connMu.Lock()
	if _, busy := s.inflight[info.ID]; busy {
		s.connMu.Unlock()
		return
	}
	if !s.backoff.ready(info.ID, now) {
		s.connMu.Unlock()
		connectTotal.WithLabelValues("skipped").Inc()
		return
	}
	s.inflight[info.ID] = struct{}{}
	s.connMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		cctx, cancel := context.WithTimeout(ctx, positive(s.cfg.ConnectTimeout, 10*time.Second))
		err := s.network.EnsureConnected(cctx, info)
		cancel()

		s.connMu.Lock()
		defer s.connMu.Unlock()
		delete(s.inflight, info.ID)
		if err != nil {
			wait := s.backoff.fail(info.ID, s.clock.Now())
			connectTotal.WithLabelValues("failure").Inc()
			s.logDebugf("直连节点失败 %s，%s 后重试: %v", info.ID, wait, err)
			return
		}
		s.backoff.reset(info.ID)
		connectTotal.WithLabelValues("success").Inc()
	}()
}

func (s *Service) sweep(ctx context.Context) {
	expired := s.table.Sweep()
	activePeersGauge.Set(float64(s.table.Len()))
	if len(expired) == 0 {
		return
	}

	s.connMu.Lock()
	for _, rec := range expired {
		s.backoff.reset(rec.ID)
	}
	s.connMu.Unlock()

	for _, rec := range expired {
		expiredTotal.Inc()
		s.logInfof("节点过期: %s last_seen=%s", rec.ID, rec.LastSeen.Format(time.RFC3339))
		event.PublishWithContext(s.publisher, ctx, event.EventTypePeerExpired,
			&types.PeerExpiredEvent{Peer: rec.ID, LastSeen: rec.LastSeen})
	}
}

// restartMDNS 关闭旧的 mDNS 服务并重新发布
//
// zeroconf 浏览端对同一实例只回调一次，重启后邻居会把本节点当作新条目
// 再次回调 HandlePeerFound，从而刷新 LastSeen。
func (s *Service) restartMDNS(ctx context.Context) error {
	s.mdnsMu.Lock()
	defer s.mdnsMu.Unlock()

	// 已停止时不再发布，Stop 先取消 ctx 再关闭 mDNS
	if ctx.Err() != nil {
		return nil
	}

	if s.mdnsSvc != nil {
		_ = s.mdnsSvc.Close()
		s.mdnsSvc = nil
	}
	svc := mdns.NewMdnsService(s.host, s.cfg.MDNS.ServiceName, s)
	if err := svc.Start(); err != nil {
		return err
	}
	s.mdnsSvc = svc
	return nil
}

func (s *Service) closeMDNS() {
	s.mdnsMu.Lock()
	defer s.mdnsMu.Unlock()
	if s.mdnsSvc != nil {
		if err := s.mdnsSvc.Close(); err != nil {
			s.logWarnf("mDNS 关闭失败: %v", err)
		}
		s.mdnsSvc = nil
	}
}

func positive(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func (s *Service) logDebugf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

func (s *Service) logInfof(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Infof(format, args...)
	}
}

func (s *Service) logWarnf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}
