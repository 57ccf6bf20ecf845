package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) }
	r.GET("/r", ok)
	r.POST("/w", ok)
	return r
}

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// TestRequestID_WithCallerHeader_PassesThrough 测试请求ID透传
func TestRequestID_WithCallerHeader_PassesThrough(t *testing.T) {
	r := newRouter(RequestID())

	rec := serve(r, http.MethodGet, "/r", map[string]string{HeaderRequestID: "trace-1"})

	assert.Equal(t, "trace-1", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "trace-1", rec.Body.String())
}

// TestRequestID_WithOversizedHeader_Regenerates 测试超长请求ID被替换
func TestRequestID_WithOversizedHeader_Regenerates(t *testing.T) {
	r := newRouter(RequestID())
	long := strings.Repeat("x", maxRequestIDLen+1)

	rec := serve(r, http.MethodGet, "/r", map[string]string{HeaderRequestID: long})

	got := rec.Header().Get(HeaderRequestID)
	assert.NotEqual(t, long, got)
	assert.Len(t, got, 36, "应生成 UUID")
}

// TestRateLimit_WhenWriteBudgetExhausted_Returns429 测试写限流
func TestRateLimit_WhenWriteBudgetExhausted_Returns429(t *testing.T) {
	// Arrange: 写限额 2/s，突发 2
	r := newRouter(RequestID(), NewRateLimit(100, 2).Middleware())

	// Act
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodPost, "/w", nil).Code)
	}
	read := serve(r, http.MethodGet, "/r", nil)

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, read.Code, "读限额独立计算")
}

// TestRateLimit_WithRetryAfter_ReportsErrorCode 测试限流响应格式
func TestRateLimit_WithRetryAfter_ReportsErrorCode(t *testing.T) {
	r := newRouter(NewRateLimit(0.5, 0).Middleware())
	serve(r, http.MethodGet, "/r", nil)

	rec := serve(r, http.MethodGet, "/r", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

// TestRateLimit_WithZeroLimit_AllowsAll 测试关闭限流
func TestRateLimit_WithZeroLimit_AllowsAll(t *testing.T) {
	r := newRouter(NewRateLimit(0, 0).Middleware())

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/w", nil).Code)
	}
}
