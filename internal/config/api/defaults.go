package api

import "time"

// API服务默认配置值
const (
	// defaultHTTPEnabled 默认启用HTTP API
	defaultHTTPEnabled = true

	// defaultHTTPAddress HTTP监听地址，与 API_ADDRESS 默认值一致
	defaultHTTPAddress = "127.0.0.1:8080"

	// defaultReadTimeout 上传体较大时需要足够的读取时间
	defaultReadTimeout = 60 * time.Second

	// defaultWriteTimeout 需覆盖网络查询超时 + 拉取时间
	defaultWriteTimeout = 60 * time.Second

	defaultShutdownTimeout = 10 * time.Second

	defaultEnableMetrics = true
	defaultEnableEvents  = true

	// defaultEventQueueSize 每个 websocket 客户端的事件缓冲
	defaultEventQueueSize = 32

	// 每客户端限流：读宽松、写严格
	defaultReadRateLimit  = 200.0
	defaultWriteRateLimit = 20.0
)
