package replication

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "replication",
		Name:      "messages_received_total",
		Help:      "Gossip messages received by type and result.",
	}, []string{"type", "result"})

	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "replication",
		Name:      "messages_sent_total",
		Help:      "Messages published or sent directly by type.",
	}, []string{"type"})

	queueDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "replication",
		Name:      "queue_drops_total",
		Help:      "Messages dropped because a bounded queue was full.",
	}, []string{"queue"})

	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "replication",
		Name:      "fetch_total",
		Help:      "Direct fetch attempts by result.",
	}, []string{"result"})

	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "casnode",
		Subsystem: "replication",
		Name:      "resolve_duration_seconds",
		Help:      "Time spent resolving content over the network.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})
)
