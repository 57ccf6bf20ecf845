package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	apitypes "github.com/weisyn/casnode/internal/api/http/types"
)

// 限流器缓存上限与空闲回收时间
const (
	maxTrackedClients = 4096
	clientIdleTTL     = 10 * time.Minute
)

// RateLimit 按客户端IP的令牌桶限流
// 上传（POST）走写限额，其余走读限额；限额<=0 表示不限
type RateLimit struct {
	readLimit  rate.Limit
	writeLimit rate.Limit
	readers    *expirable.LRU[string, *rate.Limiter]
	writers    *expirable.LRU[string, *rate.Limiter]
}

// NewRateLimit 创建限流中间件
func NewRateLimit(readQPS, writeQPS float64) *RateLimit {
	return &RateLimit{
		readLimit:  rate.Limit(readQPS),
		writeLimit: rate.Limit(writeQPS),
		readers:    expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
		writers:    expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, clientIdleTTL),
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, cache := m.readLimit, m.readers
		if c.Request.Method == http.MethodPost {
			limit, cache = m.writeLimit, m.writers
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if !limiterFor(cache, c.ClientIP(), limit).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apitypes.NewErrorResponse(apitypes.ErrRateLimitExceeded, "request rate limit exceeded",
					gin.H{"limit": float64(limit)}).WithRequestID(GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func limiterFor(cache *expirable.LRU[string, *rate.Limiter], client string, limit rate.Limit) *rate.Limiter {
	if l, ok := cache.Get(client); ok {
		return l
	}
	burst := int(limit)
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(limit, burst)
	cache.Add(client, l)
	return l
}
