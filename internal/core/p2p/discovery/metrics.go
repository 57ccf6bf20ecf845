package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activePeersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "casnode",
		Subsystem: "discovery",
		Name:      "active_peers",
		Help:      "活跃节点数",
	})

	beaconsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "discovery",
		Name:      "beacons_total",
		Help:      "收到的信标，按结果区分 accepted/self/dropped",
	}, []string{"result"})

	expiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "discovery",
		Name:      "expired_total",
		Help:      "过期清扫移除的节点记录数",
	})

	connectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "discovery",
		Name:      "connect_total",
		Help:      "发现后直连次数，按结果区分 success/failure/skipped",
	}, []string{"result"})
)
