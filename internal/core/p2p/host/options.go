package host

import (
	"time"

	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	noise "github.com/libp2p/go-libp2p/p2p/security/noise"
	libp2ptls "github.com/libp2p/go-libp2p/p2p/security/tls"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	ma "github.com/multiformats/go-multiaddr"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// 连接管理水位，局域网节点规模较小
const (
	connLowWater    = 32
	connHighWater   = 256
	connGracePeriod = 30 * time.Second
)

// userAgent 通过 identify 协议宣告的客户端标识
const userAgent = "casnode/1.0"

// ============= 传输层选项 =============

func withTransportOptions() []libp2p.Option {
	return []libp2p.Option{libp2p.Transport(tcp.NewTCPTransport, tcp.WithMetrics())}
}

// ============= 安全层选项 =============

func withSecurityOptions(cfg nodeconfig.SecurityConfig) []libp2p.Option {
	var opts []libp2p.Option
	if cfg.EnableNoise {
		opts = append(opts, libp2p.Security(noise.ID, noise.New))
	}
	if cfg.EnableTLS {
		opts = append(opts, libp2p.Security(libp2ptls.ID, libp2ptls.New))
	}
	if len(opts) == 0 {
		return []libp2p.Option{libp2p.DefaultSecurity}
	}
	return opts
}

// ============= 连接管理选项 =============

func withConnectionManagerOptions() []libp2p.Option {
	cm, err := connmgr.NewConnManager(connLowWater, connHighWater, connmgr.WithGracePeriod(connGracePeriod))
	if err != nil {
		return nil
	}
	return []libp2p.Option{libp2p.ConnectionManager(cm)}
}

// buildOptions 装配 libp2p 选项
func buildOptions(cfg *nodeconfig.NodeOptions, id p2p.Identity, listen []ma.Multiaddr, bw metrics.Reporter) []libp2p.Option {
	opts := []libp2p.Option{
		libp2p.Identity(id.PrivateKey()),
		libp2p.ListenAddrs(listen...),
		libp2p.UserAgent(userAgent),
		libp2p.DefaultMuxers,
		libp2p.BandwidthReporter(bw),
	}
	opts = append(opts, withTransportOptions()...)
	opts = append(opts, withSecurityOptions(cfg.Host.Security)...)
	opts = append(opts, withConnectionManagerOptions()...)
	return opts
}
