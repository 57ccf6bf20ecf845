package host

import (
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peerstore"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

// peerstoreAddrTTL 发现得到的地址在 peerstore 中的保留时间
var peerstoreAddrTTL = peerstore.RecentlyConnectedAddrTTL

var (
	connectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "casnode",
		Subsystem: "p2p",
		Name:      "connections",
		Help:      "当前连接数，按方向区分",
	}, []string{"direction"})

	connectionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "p2p",
		Name:      "connection_events_total",
		Help:      "连接建立与断开次数",
	}, []string{"event"})
)

// connNotifiee 实现network.Notifiee接口，记录连接指标与调试日志
type connNotifiee struct {
	logger logiface.Logger
}

func newConnNotifiee(logger logiface.Logger) *connNotifiee {
	return &connNotifiee{logger: logger}
}

// Listen 监听地址变化（不处理）
func (n *connNotifiee) Listen(_ network.Network, _ ma.Multiaddr) {}

// ListenClose 监听地址关闭（不处理）
func (n *connNotifiee) ListenClose(_ network.Network, _ ma.Multiaddr) {}

// Connected 处理节点连接事件
func (n *connNotifiee) Connected(_ network.Network, conn network.Conn) {
	dir := conn.Stat().Direction.String()
	connectionsGauge.WithLabelValues(dir).Inc()
	connectionEvents.WithLabelValues("connected").Inc()
	if n.logger != nil {
		n.logger.Debugf("节点连接事件: %s, 方向=%s", conn.RemotePeer(), dir)
	}
}

// Disconnected 处理节点断连事件
func (n *connNotifiee) Disconnected(_ network.Network, conn network.Conn) {
	dir := conn.Stat().Direction.String()
	connectionsGauge.WithLabelValues(dir).Dec()
	connectionEvents.WithLabelValues("disconnected").Inc()
	if n.logger != nil {
		n.logger.Debugf("节点断连事件: %s, 方向=%s, 持续=%s",
			conn.RemotePeer(), dir, time.Since(conn.Stat().Opened).Truncate(time.Millisecond))
	}
}
