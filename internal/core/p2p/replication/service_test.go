package replication

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/snappy"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	replicationconfig "github.com/weisyn/casnode/internal/config/replication"
	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/internal/core/cas"
	eventbus "github.com/weisyn/casnode/internal/core/infrastructure/event"
	"github.com/weisyn/casnode/internal/core/p2p/discovery"
	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/types"
)

// testNode 一个完整的测试节点：主机、节点表、内存存储与复制服务
type testNode struct {
	id    *identity.Service
	host  *host.Service
	table *discovery.PeerTable
	store *cas.Store
	svc   *Service
}

func testReplicationOptions() *replicationconfig.ReplicationOptions {
	opts := replicationconfig.New(&types.UserReplicationConfig{
		QueryTimeout: types.StringPtr("5s"),
		FetchTimeout: types.StringPtr("3s"),
	}).GetOptions()
	return opts
}

func newTestNode(t *testing.T, start bool) *testNode {
	t.Helper()
	return newTestNodeWith(t, start, nil, nil)
}

// newTestNodeWith 可指定节点表时钟与事件总线
func newTestNodeWith(t *testing.T, start bool, tableClock clock.Clock, bus event.EventBus) *testNode {
	t.Helper()
	id, err := identity.Generate(nil)
	require.NoError(t, err)

	h, err := host.New(nodeconfig.New(&types.UserNodeConfig{
		ListenAddresses: []string{"127.0.0.1:0"},
		PersistIdentity: types.BoolPtr(false),
	}).GetOptions(), id, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	storeOpts := storageconfig.New(&types.UserStorageConfig{
		RootPath:     types.StringPtr("/data"),
		CacheEnabled: types.BoolPtr(false),
	}).GetOptions()
	store, err := cas.New(afero.NewMemMapFs(), storeOpts, nil, bus, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	n := &testNode{id: id, host: h, table: discovery.NewPeerTable(time.Minute, tableClock), store: store}
	n.svc = New(Params{
		Identity:      id,
		Host:          h.Host(),
		Network:       h,
		Peers:         n.table,
		Store:         store,
		Addresser:     cas.SHA256Addresser{},
		Config:        testReplicationOptions(),
		MaxObjectSize: storeOpts.MaxObjectSize,
		Bus:           bus,
	})
	if start {
		require.NoError(t, n.svc.Start(context.Background()))
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = n.svc.Stop(ctx)
		})
	}
	return n
}

func (n *testNode) addrInfo() peer.AddrInfo {
	return peer.AddrInfo{ID: n.host.ID(), Addrs: n.host.Host().Addrs()}
}

// link 互相登记为活跃节点并建立连接，等待双方出现在主题上
func link(t *testing.T, a, b *testNode) {
	t.Helper()
	a.table.Observe(b.addrInfo())
	b.table.Observe(a.addrInfo())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, a.host.EnsureConnected(ctx, b.addrInfo()))

	require.Eventually(t, func() bool {
		return containsPeer(a.svc.TopicPeers(), b.host.ID()) && containsPeer(b.svc.TopicPeers(), a.host.ID())
	}, 10*time.Second, 50*time.Millisecond, "双方应在主题上互相可见")
}

func containsPeer(peers []peer.ID, id peer.ID) bool {
	for _, p := range peers {
		if p == id {
			return true
		}
	}
	return false
}

// TestResolve_WithNoActivePeers_ReturnsNotFoundImmediately 测试孤立节点退化
func TestResolve_WithNoActivePeers_ReturnsNotFoundImmediately(t *testing.T) {
	// Arrange
	n := newTestNode(t, false)
	id := types.Identify([]byte("nowhere"))

	// Act
	start := time.Now()
	data, err := n.svc.Resolve(context.Background(), id)

	// Assert
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Nil(t, data)
	assert.Less(t, time.Since(start), time.Second, "无活跃节点时不应等待查询超时")
}

// TestResolve_WithOnlyExpiredPeers_ReturnsNotFound 测试过期节点不参与查询
func TestResolve_WithOnlyExpiredPeers_ReturnsNotFound(t *testing.T) {
	n := newTestNode(t, false)
	mock := clock.NewMock()
	n.table = discovery.NewPeerTable(time.Minute, mock)
	n.svc.peers = n.table
	n.table.Observe(peer.AddrInfo{ID: peer.ID("gone")})
	mock.Add(2 * time.Minute)

	_, err := n.svc.Resolve(context.Background(), types.Identify([]byte("x")))

	assert.ErrorIs(t, err, ErrContentNotFound)
}

// TestResolve_WithRemoteHolder_FetchesVerifiesAndStores 测试查询-应答-拉取全流程
func TestResolve_WithRemoteHolder_FetchesVerifiesAndStores(t *testing.T) {
	// Arrange
	a, b := newTestNode(t, true), newTestNode(t, true)
	link(t, a, b)
	payload := []byte("replicated over gossip")
	info, _, err := b.store.Put(context.Background(), payload)
	require.NoError(t, err)

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := a.svc.Resolve(ctx, info.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	has, err := a.store.Has(context.Background(), info.ID)
	require.NoError(t, err)
	assert.True(t, has, "拉取后应写入本地存储")
	holders := a.svc.Holders(info.ID)
	if assert.NotEmpty(t, holders, "应答者应被记为持有者") {
		assert.Equal(t, b.host.ID(), holders[0].Peer)
	}
}

// TestResolve_WithUnknownContent_TimesOutAsNotFound 测试查询超时
func TestResolve_WithUnknownContent_TimesOutAsNotFound(t *testing.T) {
	a, b := newTestNode(t, true), newTestNode(t, true)
	link(t, a, b)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := a.svc.Resolve(ctx, types.Identify([]byte("nobody has this")))

	assert.ErrorIs(t, err, ErrContentNotFound, "请求上下文到期应视为未找到")
}

// TestResolve_WithStalledHolders_HonorsQueryTimeout 测试公告持有者直取受查询期限约束
func TestResolve_WithStalledHolders_HonorsQueryTimeout(t *testing.T) {
	// Arrange
	a := newTestNode(t, false)
	a.svc.cfg.QueryTimeout = 500 * time.Millisecond
	id := types.Identify([]byte("held by slow peers"))
	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		h := newTestNode(t, false)
		h.host.RegisterHandler(FetchProtocol, func(_ context.Context, st network.Stream) {
			_, _, _ = DecodeFrame(st)
			<-release
			_ = st.Reset()
		})
		a.table.Observe(h.addrInfo())
		a.svc.handleEnvelope(context.Background(), &Envelope{Type: MessageAnnounce, Sender: h.host.ID(), ContentID: id})
	}
	t.Cleanup(func() { close(release) })
	require.Len(t, a.svc.Holders(id), 2)

	// Act
	start := time.Now()
	_, err := a.svc.Resolve(context.Background(), id)

	// Assert
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.Less(t, time.Since(start), 2*time.Second, "持有者不应答时应在查询超时附近返回，而非逐个等待拉取超时")
}

// TestAnnounce_WithLinkedPeer_RecordsHolder 测试公告传播
func TestAnnounce_WithLinkedPeer_RecordsHolder(t *testing.T) {
	a, b := newTestNode(t, true), newTestNode(t, true)
	link(t, a, b)
	id := types.Identify([]byte("announced"))

	require.True(t, b.svc.Announce(id))

	require.Eventually(t, func() bool {
		return len(a.svc.Holders(id)) == 1
	}, 10*time.Second, 50*time.Millisecond, "对端公告应被记录")
	assert.Equal(t, b.host.ID(), a.svc.Holders(id)[0].Peer)
}

// TestAnnounce_AfterPeerExpires_SkipsThatPeer 测试广播只面向活跃集合
func TestAnnounce_AfterPeerExpires_SkipsThatPeer(t *testing.T) {
	// Arrange
	mock := clock.NewMock()
	a := newTestNodeWith(t, true, mock, nil)
	b := newTestNode(t, true)
	link(t, a, b)

	before := types.Identify([]byte("while active"))
	require.True(t, a.svc.Announce(before))
	require.Eventually(t, func() bool {
		return len(b.svc.Holders(before)) == 1
	}, 10*time.Second, 50*time.Millisecond, "活跃期间的公告应送达")

	// Act
	mock.Add(2 * time.Minute)
	require.False(t, a.table.IsActive(b.host.ID()))
	after := types.Identify([]byte("after expiry"))
	require.True(t, a.svc.Announce(after))

	// Assert
	assert.Never(t, func() bool {
		return len(b.svc.Holders(after)) > 0
	}, time.Second, 50*time.Millisecond, "过期节点不应再收到广播")
}

// TestUpload_WithEventBus_AnnouncesToPeer 测试存储事件驱动公告
func TestUpload_WithEventBus_AnnouncesToPeer(t *testing.T) {
	// Arrange
	busA, busB := eventbus.New(nil), eventbus.New(nil)
	t.Cleanup(func() {
		_ = busA.Stop(context.Background())
		_ = busB.Stop(context.Background())
	})
	a := newTestNodeWith(t, true, nil, busA)
	b := newTestNodeWith(t, true, nil, busB)
	link(t, a, b)

	// Act
	info, created, err := b.store.Put(context.Background(), []byte("stored then announced"))
	require.NoError(t, err)
	require.True(t, created)

	// Assert
	require.Eventually(t, func() bool {
		return containsHolder(a.svc.Holders(info.ID), b.host.ID())
	}, 10*time.Second, 50*time.Millisecond, "上传后对端应记录持有者")
}

func containsHolder(holders []types.Holder, id peer.ID) bool {
	for _, h := range holders {
		if h.Peer == id {
			return true
		}
	}
	return false
}

// TestFetch_WithCorruptResponder_ReturnsIntegrityError 测试哈希校验
func TestFetch_WithCorruptResponder_ReturnsIntegrityError(t *testing.T) {
	// Arrange
	a, b := newTestNode(t, false), newTestNode(t, false)
	a.table.Observe(b.addrInfo())
	id := types.Identify([]byte("expected bytes"))
	b.host.RegisterHandler(FetchProtocol, func(_ context.Context, st network.Stream) {
		defer st.Close()
		_, _, _ = DecodeFrame(st)
		_ = EncodeFrame(st, FrameTypeFound, snappy.Encode(nil, []byte("forged bytes")))
	})

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := a.svc.fetch(ctx, b.host.ID(), nil, id)

	// Assert
	assert.ErrorIs(t, err, ErrContentIntegrity)
	assert.Nil(t, data)
	has, _ := a.store.Has(context.Background(), id)
	assert.False(t, has, "损坏内容不得写入存储")
}

// TestFetch_WithUnreachablePeer_ReturnsPeerUnreachable 测试拨号失败
func TestFetch_WithUnreachablePeer_ReturnsPeerUnreachable(t *testing.T) {
	a, b := newTestNode(t, false), newTestNode(t, false)
	info := b.addrInfo()
	require.NoError(t, b.host.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := a.svc.fetch(ctx, info.ID, info.Addrs, types.Identify([]byte("x")))

	assert.ErrorIs(t, err, ErrPeerUnreachable)
}

// TestFetch_WithHolder_ReturnsExactBytes 测试直连拉取
func TestFetch_WithHolder_ReturnsExactBytes(t *testing.T) {
	a, b := newTestNode(t, true), newTestNode(t, true)
	payload := bytes.Repeat([]byte("casnode"), 4096)
	info, _, err := b.store.Put(context.Background(), payload)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	data, err := a.svc.fetch(ctx, b.host.ID(), b.host.Host().Addrs(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = a.svc.fetch(ctx, b.host.ID(), nil, types.Identify([]byte("absent")))
	assert.ErrorIs(t, err, ErrContentNotFound)
}

// TestHandleEnvelope_WithDuplicateQuery_QueuesOnce 测试查询去重
func TestHandleEnvelope_WithDuplicateQuery_QueuesOnce(t *testing.T) {
	n := newTestNode(t, false)
	q := &Envelope{Type: MessageQuery, Sender: peer.ID("p1"), QueryID: "q-1", ContentID: types.Identify(nil)}

	n.svc.handleEnvelope(context.Background(), q)
	n.svc.handleEnvelope(context.Background(), q)

	assert.Len(t, n.svc.responses, 1, "相同查询ID只应处理一次")
}

// TestHandleEnvelope_WithQueryFlood_RateLimits 测试查询限流
func TestHandleEnvelope_WithQueryFlood_RateLimits(t *testing.T) {
	n := newTestNode(t, false)
	n.svc.limiter = rate.NewLimiter(0.001, 2)

	for i := 0; i < 5; i++ {
		n.svc.handleEnvelope(context.Background(), &Envelope{
			Type: MessageQuery, Sender: peer.ID("p1"), QueryID: string(rune('a' + i)), ContentID: types.Identify(nil),
		})
	}

	assert.Len(t, n.svc.responses, 2, "超过突发额度的查询应被丢弃")
}

// TestForgetPeer_WithAnnouncements_RemovesThem 测试过期节点清理公告
func TestForgetPeer_WithAnnouncements_RemovesThem(t *testing.T) {
	n := newTestNode(t, false)
	id := types.Identify([]byte("a"))
	n.svc.handleEnvelope(context.Background(), &Envelope{Type: MessageAnnounce, Sender: peer.ID("p1"), ContentID: id})
	require.Len(t, n.svc.Holders(id), 1)

	n.svc.onPeerExpired(context.Background(), &types.PeerExpiredEvent{Peer: peer.ID("p1")})

	assert.Empty(t, n.svc.Holders(id), "过期节点的公告应被移除")
}

// TestStart_Twice_ReturnsAlreadyStarted 测试重复启动
func TestStart_Twice_ReturnsAlreadyStarted(t *testing.T) {
	n := newTestNode(t, true)

	assert.ErrorIs(t, n.svc.Start(context.Background()), ErrAlreadyStarted)
}
