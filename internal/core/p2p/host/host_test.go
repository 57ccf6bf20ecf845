package host

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/pkg/types"
)

func newTestHost(t *testing.T) *Service {
	t.Helper()
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	cfg := nodeconfig.New(&types.UserNodeConfig{
		ListenAddresses: []string{"127.0.0.1:0"},
		PersistIdentity: types.BoolPtr(false),
	}).GetOptions()
	svc, err := New(cfg, id, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// TestParseListenAddrs_WithHostPort_ConvertsToMultiaddr 测试地址转换
func TestParseListenAddrs_WithHostPort_ConvertsToMultiaddr(t *testing.T) {
	addrs, err := ParseListenAddrs([]string{"127.0.0.1:4000", "/ip4/0.0.0.0/tcp/4001", " "})

	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/4000", addrs[0].String())
	assert.Equal(t, "/ip4/0.0.0.0/tcp/4001", addrs[1].String())
}

// TestParseListenAddrs_WithGarbage_ReturnsError 测试非法地址
func TestParseListenAddrs_WithGarbage_ReturnsError(t *testing.T) {
	_, err := ParseListenAddrs([]string{"not-an-address"})
	assert.Error(t, err)

	_, err = ParseListenAddrs(nil)
	assert.Error(t, err, "空地址列表应报错")
}

// TestNew_WithIdentity_UsesIdentityPeerID 测试主机使用节点身份
func TestNew_WithIdentity_UsesIdentityPeerID(t *testing.T) {
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	cfg := nodeconfig.New(&types.UserNodeConfig{ListenAddresses: []string{"127.0.0.1:0"}}).GetOptions()

	svc, err := New(cfg, id, nil)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, id.PeerID(), svc.ID())
	require.NotEmpty(t, svc.Addrs())
	assert.Contains(t, svc.Addrs()[0].String(), "/p2p/"+id.PeerID().String())
}

// TestNewStream_BetweenHosts_RoundTrips 测试两台主机间的流
func TestNewStream_BetweenHosts_RoundTrips(t *testing.T) {
	// Arrange
	a, b := newTestHost(t), newTestHost(t)
	const proto = protocol.ID("/casnode/test/1.0.0")
	b.RegisterHandler(proto, func(_ context.Context, s network.Stream) {
		defer s.Close()
		data, _ := io.ReadAll(s)
		_, _ = s.Write(append([]byte("echo:"), data...))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Act
	require.NoError(t, a.EnsureConnected(ctx, peer.AddrInfo{ID: b.ID(), Addrs: b.Host().Addrs()}))
	s, err := a.NewStream(ctx, b.ID(), proto)
	require.NoError(t, err)
	_, err = s.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, s.CloseWrite())
	reply, err := io.ReadAll(s)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "echo:ping", string(reply))
	assert.Contains(t, a.ConnectedPeers(), b.ID())

	require.NoError(t, a.ClosePeer(b.ID()))
	assert.NotEqual(t, network.Connected, a.Host().Network().Connectedness(b.ID()))
}

// TestEnsureConnected_WithAddrs_RecordsThemInPeerstore 测试拨号前写入 peerstore 地址
func TestEnsureConnected_WithAddrs_RecordsThemInPeerstore(t *testing.T) {
	// Arrange
	a, b := newTestHost(t), newTestHost(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Act
	require.NoError(t, a.EnsureConnected(ctx, peer.AddrInfo{ID: b.ID(), Addrs: b.Host().Addrs()}))

	// Assert
	assert.NotEmpty(t, a.Host().Peerstore().Addrs(b.ID()), "连接后应保留对端地址")
	assert.Positive(t, int64(peerstoreAddrTTL), "地址保留时间应为正")
}

// TestNew_WithWildcardListen_AdvertisesInterfaceAddrs 测试监听全部接口时对外地址为具体接口地址
func TestNew_WithWildcardListen_AdvertisesInterfaceAddrs(t *testing.T) {
	// Arrange
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	cfg := nodeconfig.New(&types.UserNodeConfig{
		ListenAddresses: []string{"0.0.0.0:0"},
		PersistIdentity: types.BoolPtr(false),
	}).GetOptions()

	// Act
	svc, err := New(cfg, id, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	// Assert
	require.Eventually(t, func() bool { return len(svc.Host().Addrs()) > 0 }, 5*time.Second, 50*time.Millisecond)
	for _, a := range svc.Host().Addrs() {
		assert.NotContains(t, a.String(), "/ip4/0.0.0.0/", "mDNS 公告不应包含未指定地址")
	}
}
