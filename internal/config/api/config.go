package api

import (
	"time"

	"github.com/weisyn/casnode/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTP HTTPConfig `json:"http"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务（总开关）
	Address string `json:"address"` // 监听地址 host:port

	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	EnableMetrics  bool `json:"enable_metrics"`   // 是否暴露 /metrics
	EnableEvents   bool `json:"enable_events"`    // 是否启用 /api/v1/events
	EventQueueSize int  `json:"event_queue_size"` // 每客户端事件缓冲

	// 每客户端令牌桶限流，<=0 表示不限
	ReadRateLimit  float64 `json:"read_rate_limit"`
	WriteRateLimit float64 `json:"write_rate_limit"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置
func New(userConfig *types.UserAPIConfig) *Config {
	options := &APIOptions{
		HTTP: HTTPConfig{
			Enabled:         defaultHTTPEnabled,
			Address:         defaultHTTPAddress,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			EnableMetrics:   defaultEnableMetrics,
			EnableEvents:    defaultEnableEvents,
			EventQueueSize:  defaultEventQueueSize,
			ReadRateLimit:   defaultReadRateLimit,
			WriteRateLimit:  defaultWriteRateLimit,
		},
	}
	if userConfig != nil {
		if userConfig.HTTPEnabled != nil {
			options.HTTP.Enabled = *userConfig.HTTPEnabled
		}
		if userConfig.HTTPAddress != nil && *userConfig.HTTPAddress != "" {
			options.HTTP.Address = *userConfig.HTTPAddress
		}
		if userConfig.EnableMetrics != nil {
			options.HTTP.EnableMetrics = *userConfig.EnableMetrics
		}
		if userConfig.EnableEvents != nil {
			options.HTTP.EnableEvents = *userConfig.EnableEvents
		}
		if userConfig.ReadRateLimit != nil {
			options.HTTP.ReadRateLimit = *userConfig.ReadRateLimit
		}
		if userConfig.WriteRateLimit != nil {
			options.HTTP.WriteRateLimit = *userConfig.WriteRateLimit
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
