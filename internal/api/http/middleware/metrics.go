package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "casnode",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})

	requestSize = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "casnode",
		Subsystem:  "api",
		Name:       "request_size_bytes",
		Help:       "API request size in bytes",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "route"})

	responseSize = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "casnode",
		Subsystem:  "api",
		Name:       "response_size_bytes",
		Help:       "API response size in bytes",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"method", "route"})
)

// Metrics 收集请求指标
// 路由标签取注册时的模板（如 /api/v1/content/:id），避免按内容ID爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		if n := c.Request.ContentLength; n > 0 {
			requestSize.WithLabelValues(method, route).Observe(float64(n))
		}
		requestCounter.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n > 0 {
			responseSize.WithLabelValues(method, route).Observe(float64(n))
		}
	}
}
