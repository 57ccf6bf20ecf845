package cas

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 存储层指标，包级注册一次，多个 Store 实例共享
var (
	putTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "store",
		Name:      "put_total",
		Help:      "Put 调用次数，按结果区分 created/duplicate/error",
	}, []string{"result"})

	getTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "store",
		Name:      "get_total",
		Help:      "Get 调用次数，按结果区分 cache_hit/hit/miss/error",
	}, []string{"result"})

	bytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "store",
		Name:      "bytes_written_total",
		Help:      "实际落盘的负载字节数",
	})

	putDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "casnode",
		Subsystem: "store",
		Name:      "put_duration_seconds",
		Help:      "新对象落盘耗时（含 fsync）",
		Buckets:   prometheus.DefBuckets,
	})
)
