// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 零值陷阱处理说明：
// - nil: 表示用户未在配置文件中设置该字段，将使用系统默认值
// - &value: 表示用户明确设置了该值，即使是零值（如0、false、""）也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	Version *string `json:"version,omitempty"`  // 应用版本

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// 节点网络配置（身份、监听地址、mDNS 发现）
	Node *UserNodeConfig `json:"node,omitempty"`

	// 复制/公告层配置
	Replication *UserReplicationConfig `json:"replication,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 链配置（仅占位，核心逻辑不使用）
	Chain *UserChainConfig `json:"chain,omitempty"`
}

// UserStorageConfig 用户存储配置
// 只包含JSON配置文件中实际出现的字段
type UserStorageConfig struct {
	RootPath      *string `json:"root_path,omitempty"`       // 对象文件根目录
	MaxObjectSize *int64  `json:"max_object_size,omitempty"` // 单个对象最大字节数
	CacheEnabled  *bool   `json:"cache_enabled,omitempty"`   // 是否启用热点对象缓存
	CacheSizeMB   *int    `json:"cache_size_mb,omitempty"`   // 缓存容量上限(MB)
	CacheTTL      *string `json:"cache_ttl,omitempty"`       // 缓存条目生命周期，如 "10m"
}

// UserNodeConfig 用户节点网络配置
// 只包含JSON配置文件中实际出现的字段
type UserNodeConfig struct {
	ListenAddresses []string `json:"listen_addresses,omitempty"` // P2P监听地址列表（multiaddr 或 host:port）

	IdentityKeyFile *string `json:"identity_key_file,omitempty"` // 身份私钥文件路径
	PersistIdentity *bool   `json:"persist_identity,omitempty"`  // 是否持久化身份私钥

	EnableMDNS      *bool   `json:"enable_mdns,omitempty"`       // 启用mDNS发现
	MDNSServiceName *string `json:"mdns_service_name,omitempty"` // mDNS 服务名
	BeaconInterval  *string `json:"beacon_interval,omitempty"`   // 信标周期，如 "10s"
	PeerTTL         *string `json:"peer_ttl,omitempty"`          // 节点记录过期时间
	SweepInterval   *string `json:"sweep_interval,omitempty"`    // 过期清扫周期
	ConnectTimeout  *string `json:"connect_timeout,omitempty"`   // 发现后直连超时
}

// UserReplicationConfig 用户复制层配置
type UserReplicationConfig struct {
	Topic           *string  `json:"topic,omitempty"`             // gossip 主题
	QueryTimeout    *string  `json:"query_timeout,omitempty"`     // 查询超时，如 "5s"
	FetchTimeout    *string  `json:"fetch_timeout,omitempty"`     // 单次直连拉取超时
	InboxSize       *int     `json:"inbox_size,omitempty"`        // 入站消息队列容量
	OutboxSize      *int     `json:"outbox_size,omitempty"`       // 公告队列容量
	QueryRateLimit  *float64 `json:"query_rate_limit,omitempty"`  // 每秒应答的查询数
	AnnouncementTTL *string  `json:"announcement_ttl,omitempty"`  // 公告记录保留时间
}

// UserAPIConfig 用户API配置
// 只包含JSON配置文件中实际出现的字段
type UserAPIConfig struct {
	HTTPEnabled   *bool   `json:"http_enabled,omitempty"`   // 是否启用HTTP服务（默认true）
	HTTPAddress   *string `json:"http_address,omitempty"`   // HTTP监听地址 host:port
	EnableMetrics *bool   `json:"enable_metrics,omitempty"` // 是否暴露 /metrics
	EnableEvents  *bool   `json:"enable_events,omitempty"`  // 是否启用 websocket 事件流

	ReadRateLimit  *float64 `json:"read_rate_limit,omitempty"`  // 每客户端读请求 QPS
	WriteRateLimit *float64 `json:"write_rate_limit,omitempty"` // 每客户端上传 QPS
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台

	// 轮转（仅写文件时生效）
	MaxSizeMB  *int  `json:"max_size_mb,omitempty"`
	MaxBackups *int  `json:"max_backups,omitempty"`
	MaxAgeDays *int  `json:"max_age_days,omitempty"`
	Compress   *bool `json:"compress,omitempty"`

	EnableCaller *bool `json:"enable_caller,omitempty"`
}

// UserChainConfig 用户链配置
type UserChainConfig struct {
	RPCEndpoint *string `json:"rpc_endpoint,omitempty"` // 区块链 RPC 地址（占位）
}
