// Package replication 实现内容公告、查询与直连拉取
//
// 广播面：GossipSub 单主题承载签名的 Announce/Query 消息，传输层使用
// StrictSign，应用层信封再由发送者身份签名，主题校验器在转发前拒绝
// 验签失败、发送者与传输签名者不一致或时间戳偏离过大的消息。
//
// 直连面：QueryResponse 通过 /casnode/query-response/1.0.0 流直接送达
// 查询方，对象字节通过 /casnode/fetch/1.0.0 拉取并按内容标识符校验。
//
// 所有跨 goroutine 的传递都经过有界通道，满时丢弃并告警；
// 磁盘访问只发生在应答循环与拉取处理器中，接收循环不做 I/O。
package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	replicationconfig "github.com/weisyn/casnode/internal/config/replication"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
	"github.com/weisyn/casnode/pkg/types"
)

// Params 复制服务依赖
type Params struct {
	Identity  p2p.Identity
	Host      lphost.Host // GossipSub 与本地地址来源
	Network   p2p.NetworkService
	Peers     p2p.PeerDirectory
	Store     storage.ContentStore
	Addresser storage.Addresser
	Config    *replicationconfig.ReplicationOptions

	// MaxObjectSize 拉取时接受的最大对象，<=0 表示不限制
	MaxObjectSize int64

	Clock     clock.Clock
	Bus       event.EventBus // 订阅存储与过期事件；为空时需手动调用 Announce/ForgetPeer
	Publisher event.Publisher
	Logger    logiface.Logger
}

// responseTask 待应答的查询
type responseTask struct {
	query *Envelope
}

// Service 复制服务
type Service struct {
	self      peer.ID
	identity  p2p.Identity
	host      lphost.Host
	network   p2p.NetworkService
	peers     p2p.PeerDirectory
	store     storage.ContentStore
	addresser storage.Addresser
	cfg       replicationconfig.ReplicationOptions
	clock     clock.Clock
	bus       event.EventBus
	publisher event.Publisher
	logger    logiface.Logger

	maxObjectSize int64

	book    *AnnouncementBook
	seen    *expirable.LRU[string, struct{}]
	limiter *rate.Limiter

	inbox     chan *Envelope
	outbox    chan types.ContentID
	responses chan responseTask

	pendingMu sync.Mutex
	pending   map[string]chan *Envelope

	runMu   sync.Mutex
	ps      *pubsub.PubSub
	topic   *pubsub.Topic
	sub     *pubsub.Subscription
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// ErrAlreadyStarted 重复启动
var ErrAlreadyStarted = errors.New("复制服务已启动")

// New 创建复制服务
func New(p Params) *Service {
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	cfg := *p.Config
	s := &Service{
		self:          p.Identity.PeerID(),
		identity:      p.Identity,
		host:          p.Host,
		network:       p.Network,
		peers:         p.Peers,
		store:         p.Store,
		addresser:     p.Addresser,
		cfg:           cfg,
		clock:         p.Clock,
		bus:           p.Bus,
		publisher:     p.Publisher,
		logger:        p.Logger,
		maxObjectSize: p.MaxObjectSize,
		book:          NewAnnouncementBook(cfg.AnnouncementTTL, p.Clock),
		seen:          expirable.NewLRU[string, struct{}](cfg.SeenCacheSize, nil, cfg.SeenTTL),
		limiter:       rate.NewLimiter(rate.Limit(cfg.QueryRateLimit), cfg.QueryBurst),
		inbox:         make(chan *Envelope, cfg.InboxSize),
		outbox:        make(chan types.ContentID, cfg.OutboxSize),
		responses:     make(chan responseTask, cfg.ResponseSize),
		pending:       make(map[string]chan *Envelope),
	}
	return s
}

// Book 公告簿
func (s *Service) Book() *AnnouncementBook {
	return s.book
}

// Holders 实现 p2p.Resolver
func (s *Service) Holders(id types.ContentID) []types.Holder {
	return s.book.Holders(id)
}

// TopicPeers 当前在主题上可见的节点
func (s *Service) TopicPeers() []peer.ID {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.topic == nil {
		return nil
	}
	return s.topic.ListPeers()
}

// Start 加入主题、注册直连协议并启动各循环
func (s *Service) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	if s.host == nil {
		return errors.New("复制服务需要 libp2p 主机")
	}

	runCtx, cancel := context.WithCancel(context.Background())

	ps, err := pubsub.NewGossipSub(runCtx, s.host, s.gossipOptions()...)
	if err != nil {
		cancel()
		return fmt.Errorf("创建 GossipSub 失败: %w", err)
	}
	if err := ps.RegisterTopicValidator(s.cfg.Topic, s.validate); err != nil {
		cancel()
		return fmt.Errorf("注册主题校验器失败: %w", err)
	}
	topic, err := ps.Join(s.cfg.Topic)
	if err != nil {
		cancel()
		return fmt.Errorf("加入主题 %s 失败: %w", s.cfg.Topic, err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		_ = topic.Close()
		cancel()
		return fmt.Errorf("订阅主题 %s 失败: %w", s.cfg.Topic, err)
	}

	s.ps, s.topic, s.sub = ps, topic, sub
	s.ctx, s.cancel = runCtx, cancel
	s.started = true

	s.network.RegisterHandler(FetchProtocol, s.handleFetch)
	s.network.RegisterHandler(QueryResponseProtocol, s.handleQueryResponse)

	if s.bus != nil {
		if err := s.bus.Subscribe(event.EventTypeContentStored, s.onContentStored); err != nil {
			s.logWarnf("订阅内容存储事件失败: %v", err)
		}
		if err := s.bus.SubscribeAsync(event.EventTypePeerExpired, s.onPeerExpired, false); err != nil {
			s.logWarnf("订阅节点过期事件失败: %v", err)
		}
	}

	s.wg.Add(5)
	go s.receiveLoop(runCtx, sub)
	go s.workerLoop(runCtx)
	go s.announceLoop(runCtx)
	go s.responderLoop(runCtx)
	go s.pruneLoop(runCtx)

	s.logInfof("复制服务已启动 topic=%s", s.cfg.Topic)
	return nil
}

// 非活跃节点的应用评分，低于发布阈值但高于灰名单阈值：
// 不再向其广播或闲聊，但仍接收其消息
const (
	inactivePeerScore = -100
	gossipThreshold   = -10
	publishThreshold  = -50
	graylistThreshold = -1000
)

// gossipOptions GossipSub 只向发现层的活跃集合广播
//
// FloodPublish 不经过 PeerFilter，因此活跃性同时通过应用评分表达，
// 评分在每次发布时实时计算，过期节点即使仍有连接也收不到本节点的消息。
// 不启用 PX，避免连接发现层从未见过的节点。
func (s *Service) gossipOptions() []pubsub.Option {
	isActive := func(p peer.ID) bool {
		return s.peers != nil && s.peers.IsActive(p)
	}
	return []pubsub.Option{
		pubsub.WithFloodPublish(true),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictSign),
		pubsub.WithPeerFilter(func(p peer.ID, _ string) bool { return isActive(p) }),
		pubsub.WithPeerScore(
			&pubsub.PeerScoreParams{
				AppSpecificScore: func(p peer.ID) float64 {
					if isActive(p) {
						return 0
					}
					return inactivePeerScore
				},
				AppSpecificWeight: 1,
				DecayInterval:     time.Second,
				DecayToZero:       0.01,
			},
			&pubsub.PeerScoreThresholds{
				GossipThreshold:   gossipThreshold,
				PublishThreshold:  publishThreshold,
				GraylistThreshold: graylistThreshold,
			},
		),
	}
}

// Stop 停止服务，等待循环退出（受 ctx 限时）
func (s *Service) Stop(ctx context.Context) error {
	s.runMu.Lock()
	if !s.started {
		s.runMu.Unlock()
		return nil
	}
	s.started = false
	if s.bus != nil {
		_ = s.bus.Unsubscribe(event.EventTypeContentStored, s.onContentStored)
		_ = s.bus.Unsubscribe(event.EventTypePeerExpired, s.onPeerExpired)
	}
	s.network.UnregisterHandler(FetchProtocol)
	s.network.UnregisterHandler(QueryResponseProtocol)

	s.sub.Cancel()
	var errs error
	if err := s.topic.Close(); err != nil {
		s.logDebugf("关闭主题失败: %v", err)
	}
	errs = multierr.Append(errs, s.ps.UnregisterTopicValidator(s.cfg.Topic))
	s.cancel()
	s.topic, s.sub = nil, nil
	s.runMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = multierr.Append(errs, ctx.Err())
	}
	return errs
}

// Announce 将内容加入公告队列，队列满时丢弃
func (s *Service) Announce(id types.ContentID) bool {
	select {
	case s.outbox <- id:
		return true
	default:
		queueDrops.WithLabelValues("outbox").Inc()
		s.logWarnf("公告队列已满，丢弃 %s", id)
		return false
	}
}

// ForgetPeer 移除过期节点的公告并断开连接
func (s *Service) ForgetPeer(p peer.ID) {
	n := s.book.RemovePeer(p)
	if err := s.network.ClosePeer(p); err != nil {
		s.logDebugf("断开过期节点 %s 失败: %v", p, err)
	}
	s.logDebugf("节点 %s 过期，移除 %d 条公告", p, n)
}

func (s *Service) onContentStored(_ context.Context, evt *types.ContentStoredEvent) {
	if evt == nil {
		return
	}
	s.Announce(evt.Object.ID)
}

func (s *Service) onPeerExpired(_ context.Context, evt *types.PeerExpiredEvent) {
	if evt == nil {
		return
	}
	s.ForgetPeer(evt.Peer)
}

// validate 主题校验器：在转发前拒绝无效消息
func (s *Service) validate(_ context.Context, from peer.ID, msg *pubsub.Message) pubsub.ValidationResult {
	env, err := s.decodeGossip(msg)
	if err != nil {
		result := "rejected"
		if errors.Is(err, ErrStaleMessage) {
			result = "stale"
		}
		messagesReceived.WithLabelValues("unknown", result).Inc()
		s.logDebugf("拒绝来自 %s 的消息: %v", from, err)
		if errors.Is(err, ErrStaleMessage) {
			return pubsub.ValidationIgnore
		}
		return pubsub.ValidationReject
	}
	msg.ValidatorData = env
	return pubsub.ValidationAccept
}

// decodeGossip 解码并验证广播消息
func (s *Service) decodeGossip(msg *pubsub.Message) (*Envelope, error) {
	env := new(Envelope)
	if err := env.Unmarshal(msg.GetData()); err != nil {
		return nil, err
	}
	if env.Type == MessageQueryResponse {
		return nil, fmt.Errorf("%w: 应答不得广播", ErrMalformedMessage)
	}
	if env.Sender != msg.GetFrom() {
		return nil, fmt.Errorf("%w: 信封发送者 %s 与传输签名者 %s 不一致",
			ErrMalformedMessage, env.Sender, msg.GetFrom())
	}
	if err := env.Verify(nil); err != nil {
		return nil, err
	}
	if err := env.CheckFreshness(s.clock.Now(), s.cfg.MaxMessageAge); err != nil {
		return nil, err
	}
	return env, nil
}

// receiveLoop 从订阅读取消息放入收件箱，不做 I/O
func (s *Service) receiveLoop(ctx context.Context, sub *pubsub.Subscription) {
	defer s.wg.Done()
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == s.self || msg.GetFrom() == s.self {
			continue
		}
		env, ok := msg.ValidatorData.(*Envelope)
		if !ok {
			// 校验器总会设置；防御性地重新解码
			if env, err = s.decodeGossip(msg); err != nil {
				continue
			}
		}
		select {
		case s.inbox <- env:
		default:
			queueDrops.WithLabelValues("inbox").Inc()
			s.logWarnf("收件箱已满，丢弃来自 %s 的 %s", env.Sender, env.Type)
		}
	}
}

// workerLoop 串行处理已验证的广播消息
func (s *Service) workerLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-s.inbox:
			s.handleEnvelope(ctx, env)
		}
	}
}

func (s *Service) handleEnvelope(ctx context.Context, env *Envelope) {
	switch env.Type {
	case MessageAnnounce:
		messagesReceived.WithLabelValues(env.Type.String(), "accepted").Inc()
		s.book.Add(env.ContentID, env.Sender)
		event.PublishWithContext(s.publisher, ctx, event.EventTypeAnnouncementReceived,
			&types.AnnouncementReceivedEvent{ID: env.ContentID, Holder: env.Sender})

	case MessageQuery:
		if _, dup := s.seen.Get(env.QueryID); dup {
			messagesReceived.WithLabelValues(env.Type.String(), "duplicate").Inc()
			return
		}
		s.seen.Add(env.QueryID, struct{}{})
		if !s.limiter.Allow() {
			messagesReceived.WithLabelValues(env.Type.String(), "rate_limited").Inc()
			s.logDebugf("查询限流，丢弃 %s 的查询 %s", env.Sender, env.QueryID)
			return
		}
		messagesReceived.WithLabelValues(env.Type.String(), "accepted").Inc()
		select {
		case s.responses <- responseTask{query: env}:
		default:
			queueDrops.WithLabelValues("responses").Inc()
			s.logWarnf("应答队列已满，丢弃查询 %s", env.QueryID)
		}

	default:
		messagesReceived.WithLabelValues(env.Type.String(), "ignored").Inc()
	}
}

// announceLoop 签名并广播公告
func (s *Service) announceLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.outbox:
			env := &Envelope{
				Type:      MessageAnnounce,
				ContentID: id,
				Addrs:     s.localAddrs(),
				Timestamp: s.clock.Now(),
			}
			if err := s.publish(ctx, env); err != nil {
				s.logWarnf("广播公告 %s 失败: %v", id, err)
			}
		}
	}
}

// responderLoop 检查本地存储并直连应答
func (s *Service) responderLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.responses:
			s.respond(ctx, task.query)
		}
	}
}

func (s *Service) respond(ctx context.Context, q *Envelope) {
	if !s.peers.IsActive(q.Sender) {
		s.logDebugf("查询方 %s 不在活跃集合，忽略查询 %s", q.Sender, q.QueryID)
		return
	}
	has, err := s.store.Has(ctx, q.ContentID)
	if err != nil {
		s.logWarnf("查询 %s 检查本地存储失败: %v", q.QueryID, err)
		return
	}
	if !has {
		return
	}

	resp := &Envelope{
		Type:      MessageQueryResponse,
		ContentID: q.ContentID,
		QueryID:   q.QueryID,
		Addrs:     s.localAddrs(),
		Timestamp: s.clock.Now(),
	}
	if err := resp.Sign(s.identity); err != nil {
		s.logErrorf("签名应答失败: %v", err)
		return
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.ResponseTimeout)
	defer cancel()
	info := peer.AddrInfo{ID: q.Sender, Addrs: q.Addrs}
	if rec, ok := s.peers.Get(q.Sender); ok && len(info.Addrs) == 0 {
		info.Addrs = rec.Addrs
	}
	if err := s.sendDirect(rctx, info, resp); err != nil {
		s.logDebugf("向 %s 发送查询应答失败: %v", q.Sender, err)
		return
	}
	messagesSent.WithLabelValues(resp.Type.String()).Inc()
}

func (s *Service) sendDirect(ctx context.Context, info peer.AddrInfo, env *Envelope) error {
	if err := s.network.EnsureConnected(ctx, info); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerUnreachable, err)
	}
	st, err := s.network.NewStream(ctx, info.ID, QueryResponseProtocol)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPeerUnreachable, err)
	}
	defer st.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = st.SetDeadline(dl)
	}
	if err := EncodeFrame(st, FrameTypeEnvelope, env.Marshal()); err != nil {
		_ = st.Reset()
		return fmt.Errorf("%w: %v", ErrPeerUnreachable, err)
	}
	return nil
}

// handleQueryResponse 接收直连应答并投递给等待中的查询
func (s *Service) handleQueryResponse(_ context.Context, st network.Stream) {
	defer st.Close()
	remote := st.Conn().RemotePeer()
	_ = st.SetDeadline(time.Now().Add(s.cfg.ResponseTimeout))

	ft, payload, err := DecodeFrame(st)
	if err != nil || ft != FrameTypeEnvelope {
		_ = st.Reset()
		messagesReceived.WithLabelValues(MessageQueryResponse.String(), "malformed").Inc()
		return
	}
	env := new(Envelope)
	if err := env.Unmarshal(payload); err != nil || env.Type != MessageQueryResponse {
		messagesReceived.WithLabelValues(MessageQueryResponse.String(), "malformed").Inc()
		return
	}
	if env.Sender != remote {
		messagesReceived.WithLabelValues(env.Type.String(), "rejected").Inc()
		s.logDebugf("应答发送者 %s 与流对端 %s 不一致", env.Sender, remote)
		return
	}
	if err := env.Verify(nil); err != nil {
		messagesReceived.WithLabelValues(env.Type.String(), "rejected").Inc()
		s.logDebugf("应答验签失败 peer=%s: %v", remote, err)
		return
	}
	if err := env.CheckFreshness(s.clock.Now(), s.cfg.MaxMessageAge); err != nil {
		messagesReceived.WithLabelValues(env.Type.String(), "stale").Inc()
		return
	}

	s.book.Add(env.ContentID, env.Sender)

	s.pendingMu.Lock()
	ch, ok := s.pending[env.QueryID]
	s.pendingMu.Unlock()
	if !ok {
		messagesReceived.WithLabelValues(env.Type.String(), "late").Inc()
		return
	}
	select {
	case ch <- env:
		messagesReceived.WithLabelValues(env.Type.String(), "accepted").Inc()
	default:
		queueDrops.WithLabelValues("query_responses").Inc()
	}
}

// pruneLoop 周期清理过期公告
func (s *Service) pruneLoop(ctx context.Context) {
	defer s.wg.Done()
	interval := s.cfg.AnnouncementTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.book.Prune(); n > 0 {
				s.logDebugf("清理 %d 条过期公告", n)
			}
		}
	}
}

// publish 签名并广播
func (s *Service) publish(ctx context.Context, env *Envelope) error {
	if err := env.Sign(s.identity); err != nil {
		return err
	}
	s.runMu.Lock()
	topic := s.topic
	s.runMu.Unlock()
	if topic == nil {
		return ErrNotStarted
	}
	if err := topic.Publish(ctx, env.Marshal()); err != nil {
		return err
	}
	messagesSent.WithLabelValues(env.Type.String()).Inc()
	return nil
}

func (s *Service) localAddrs() []ma.Multiaddr {
	if s.host == nil {
		return nil
	}
	return s.host.Addrs()
}

// Resolve 实现 p2p.Resolver
//
// 没有活跃节点时立即返回 ErrContentNotFound；否则先尝试已公告的活跃持有者，
// 再广播查询并在 min(ctx, QueryTimeout) 内逐个拉取应答者，首个通过哈希校验的
// 结果写入本地存储后返回。
func (s *Service) Resolve(ctx context.Context, id types.ContentID) ([]byte, error) {
	start := time.Now()
	data, err := s.resolve(ctx, id)
	result := "found"
	if err != nil {
		result = "not_found"
		if !errors.Is(err, ErrContentNotFound) {
			result = "error"
		}
	}
	resolveDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return data, err
}

func (s *Service) resolve(ctx context.Context, id types.ContentID) ([]byte, error) {
	if s.peers.Len() == 0 {
		return nil, fmt.Errorf("%w: 没有活跃节点", ErrContentNotFound)
	}

	// 公告持有者直取与广播查询共用同一个查询期限
	qctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	tried := make(map[peer.ID]struct{})
	for _, h := range s.book.Holders(id) {
		if !s.peers.IsActive(h.Peer) {
			continue
		}
		tried[h.Peer] = struct{}{}
		data, err := s.fetchAndStore(qctx, h.Peer, nil, id)
		if err == nil {
			return data, nil
		}
		s.logDebugf("从公告持有者 %s 拉取 %s 失败: %v", h.Peer, id, err)
		if qctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrContentNotFound, qctx.Err())
		}
	}

	qid := uuid.NewString()
	responses := make(chan *Envelope, s.cfg.ResponseSize)
	s.pendingMu.Lock()
	s.pending[qid] = responses
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, qid)
		s.pendingMu.Unlock()
	}()

	query := &Envelope{
		Type:      MessageQuery,
		ContentID: id,
		QueryID:   qid,
		Addrs:     s.localAddrs(),
		Timestamp: s.clock.Now(),
	}
	if err := s.publish(qctx, query); err != nil {
		if errors.Is(err, ErrNotStarted) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: 广播查询失败: %v", ErrContentNotFound, err)
	}

	for {
		select {
		case <-qctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContentNotFound, qctx.Err())
		case resp := <-responses:
			if resp.ContentID != id {
				continue
			}
			if _, done := tried[resp.Sender]; done {
				continue
			}
			if !s.peers.IsActive(resp.Sender) {
				s.logDebugf("应答者 %s 不在活跃集合，跳过", resp.Sender)
				continue
			}
			tried[resp.Sender] = struct{}{}
			data, err := s.fetchAndStore(qctx, resp.Sender, resp.Addrs, id)
			if err == nil {
				return data, nil
			}
			if errors.Is(err, ErrContentIntegrity) {
				s.logWarnf("丢弃 %s 提供的损坏内容: %v", resp.Sender, err)
			} else {
				s.logDebugf("从 %s 拉取 %s 失败: %v", resp.Sender, id, err)
			}
		}
	}
}

// fetchAndStore 拉取、校验并写入本地存储
func (s *Service) fetchAndStore(ctx context.Context, from peer.ID, addrs []ma.Multiaddr, id types.ContentID) ([]byte, error) {
	data, err := s.fetch(ctx, from, addrs, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.store.Put(ctx, data); err != nil {
		return nil, fmt.Errorf("保存拉取的内容 %s 失败: %w", id, err)
	}
	s.logInfof("已从 %s 拉取并保存 %s (%d bytes)", from, id, len(data))
	return data, nil
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

func (s *Service) logErrorf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
