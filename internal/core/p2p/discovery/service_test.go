package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// capturePublisher 记录发布的事件
type capturePublisher struct {
	mu         sync.Mutex
	discovered []*types.PeerDiscoveredEvent
	expired    []*types.PeerExpiredEvent
}

func (p *capturePublisher) Publish(t event.EventType, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch t {
	case event.EventTypePeerDiscovered:
		p.discovered = append(p.discovered, args[1].(*types.PeerDiscoveredEvent))
	case event.EventTypePeerExpired:
		p.expired = append(p.expired, args[1].(*types.PeerExpiredEvent))
	}
}

func (p *capturePublisher) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.discovered), len(p.expired)
}

// fakeNetwork 记录直连请求
type fakeNetwork struct {
	mu    sync.Mutex
	dials []peer.ID
	err   error
}

var _ p2p.NetworkService = (*fakeNetwork)(nil)

func (f *fakeNetwork) EnsureConnected(_ context.Context, info peer.AddrInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials = append(f.dials, info.ID)
	return f.err
}

func (f *fakeNetwork) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dials)
}

func (f *fakeNetwork) NewStream(context.Context, peer.ID, protocol.ID) (network.Stream, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeNetwork) RegisterHandler(protocol.ID, p2p.StreamHandler) {}
func (f *fakeNetwork) UnregisterHandler(protocol.ID)                  {}
func (f *fakeNetwork) ClosePeer(peer.ID) error                        { return nil }

func testDiscoveryConfig() nodeconfig.DiscoveryConfig {
	cfg := nodeconfig.New(&types.UserNodeConfig{EnableMDNS: types.BoolPtr(false)}).GetOptions().Discovery
	return cfg
}

func startService(t *testing.T, mock *clock.Mock, pub event.Publisher, net p2p.NetworkService) *Service {
	t.Helper()
	svc := New(Params{
		Self:      peer.ID("self"),
		Network:   net,
		Config:    testDiscoveryConfig(),
		Clock:     mock,
		Publisher: pub,
	})
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { require.NoError(t, svc.Stop(context.Background())) })
	return svc
}

// TestHandlePeerFound_WithNewPeer_PublishesDiscoveredAndDials 测试发现流程
func TestHandlePeerFound_WithNewPeer_PublishesDiscoveredAndDials(t *testing.T) {
	// Arrange
	mock := clock.NewMock()
	pub := &capturePublisher{}
	net := &fakeNetwork{}
	svc := startService(t, mock, pub, net)

	// Act
	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))
	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))

	// Assert
	require.Eventually(t, func() bool { return svc.Table().IsActive("peer-a") }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return net.dialCount() >= 1 }, 2*time.Second, 10*time.Millisecond)
	discovered, _ := pub.counts()
	assert.Equal(t, 1, discovered, "重复信标不应重复发布发现事件")
}

// TestHandlePeerFound_WithSelf_IsIgnored 测试忽略自身信标
func TestHandlePeerFound_WithSelf_IsIgnored(t *testing.T) {
	mock := clock.NewMock()
	svc := startService(t, mock, nil, nil)

	svc.HandlePeerFound(addrInfo(t, "self", "/ip4/10.0.0.1/tcp/4000"))

	assert.Never(t, func() bool { return svc.Table().Len() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

// TestSweep_WithSilentPeer_PublishesExpired 测试 TTL 过期
func TestSweep_WithSilentPeer_PublishesExpired(t *testing.T) {
	mock := clock.NewMock()
	pub := &capturePublisher{}
	svc := startService(t, mock, pub, nil)
	cfg := testDiscoveryConfig()

	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))
	require.Eventually(t, func() bool { return svc.Table().IsActive("peer-a") }, 2*time.Second, 10*time.Millisecond)

	// 推进超过 TTL，清扫定时器随之触发
	for elapsed := time.Duration(0); elapsed <= cfg.PeerTTL+cfg.SweepInterval; elapsed += cfg.SweepInterval {
		mock.Add(cfg.SweepInterval)
	}

	require.Eventually(t, func() bool {
		_, expired := pub.counts()
		return expired == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, svc.Table().IsActive("peer-a"))
	assert.Zero(t, svc.Table().Len())
}

// TestConnect_WithFailure_BacksOff 测试直连失败退避
func TestConnect_WithFailure_BacksOff(t *testing.T) {
	mock := clock.NewMock()
	net := &fakeNetwork{err: errors.New("unreachable")}
	svc := startService(t, mock, nil, net)

	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))
	require.Eventually(t, func() bool { return net.dialCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 等待首次直连的协程退出后再发信标，退避期内不应重拨
	require.Eventually(t, func() bool {
		svc.connMu.Lock()
		defer svc.connMu.Unlock()
		return len(svc.inflight) == 0
	}, 2*time.Second, 10*time.Millisecond)
	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))

	assert.Never(t, func() bool { return net.dialCount() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

// TestConnect_AfterSuccess_ClearsBackoff 测试直连成功后清除失败记录
func TestConnect_AfterSuccess_ClearsBackoff(t *testing.T) {
	// Arrange
	mock := clock.NewMock()
	net := &fakeNetwork{err: errors.New("unreachable")}
	svc := startService(t, mock, nil, net)
	failures := func() int {
		svc.connMu.Lock()
		defer svc.connMu.Unlock()
		return svc.backoff.failures("peer-a")
	}

	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))
	require.Eventually(t, func() bool { return failures() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Act
	net.mu.Lock()
	net.err = nil
	net.mu.Unlock()
	mock.Add(2 * connectBackoffBase)
	svc.HandlePeerFound(addrInfo(t, "peer-a", "/ip4/10.0.0.1/tcp/4000"))

	// Assert
	require.Eventually(t, func() bool { return net.dialCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return failures() == 0 }, 2*time.Second, 10*time.Millisecond, "成功直连后失败计数应清零")
}

// TestStart_Twice_ReturnsError 测试重复启动
func TestStart_Twice_ReturnsError(t *testing.T) {
	svc := startService(t, clock.NewMock(), nil, nil)

	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)
}
