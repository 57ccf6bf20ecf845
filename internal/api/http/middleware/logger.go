package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	infralog "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

// Logger 访问日志（复用统一日志接口的底层 zap）
func Logger(logger infralog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if logger == nil {
			return
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		zl := logger.GetZapLogger()
		if zl == nil {
			logger.Infof("HTTP %s %s -> %d", c.Request.Method, path, status)
			return
		}
		switch {
		case status >= 500:
			zl.Error("HTTP request", fields...)
		case status >= 400:
			zl.Warn("HTTP request", fields...)
		default:
			zl.Debug("HTTP request", fields...)
		}
	}
}
