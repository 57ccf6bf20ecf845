package node

import (
	"time"

	"github.com/weisyn/casnode/pkg/types"
)

// NodeOptions 节点网络配置选项
// 身份、主机与发现三个子模块的统一配置入口
type NodeOptions struct {
	// 主机配置 - 对应 internal/core/p2p/host
	Host HostConfig `json:"host"`

	// 身份配置 - 对应 internal/core/p2p/identity
	Identity IdentityConfig `json:"identity"`

	// 节点发现配置 - 对应 internal/core/p2p/discovery
	Discovery DiscoveryConfig `json:"discovery"`
}

// HostConfig 主机配置
type HostConfig struct {
	// 监听地址，支持 multiaddr 或 host:port 形式
	ListenAddresses []string `json:"listen_addresses"`

	// 安全协议
	Security SecurityConfig `json:"security"`
}

// SecurityConfig 安全协议配置
type SecurityConfig struct {
	EnableTLS   bool `json:"enable_tls"`
	EnableNoise bool `json:"enable_noise"`
}

// IdentityConfig 主机身份配置
// 当未提供私钥且指定的密钥文件不存在时，系统将自动生成，Persist=true 时持久化
type IdentityConfig struct {
	// PrivateKey 以base64编码的libp2p私钥（crypto.MarshalPrivateKey后的结果），优先生效
	PrivateKey string `json:"private_key"`
	// KeyFile 私钥持久化文件路径
	KeyFile string `json:"key_file"`
	// Persist 是否将生成的私钥写入 KeyFile
	Persist bool `json:"persist"`
}

// DiscoveryConfig 节点发现配置
type DiscoveryConfig struct {
	MDNS MDNSConfig `json:"mdns"`

	BeaconInterval  time.Duration `json:"beacon_interval"`  // 信标周期
	PeerTTL         time.Duration `json:"peer_ttl"`         // 记录过期时间
	SweepInterval   time.Duration `json:"sweep_interval"`   // 清扫周期
	ConnectTimeout  time.Duration `json:"connect_timeout"`  // 直连超时
	BeaconQueueSize int           `json:"beacon_queue_size"` // 信标队列容量
}

// MDNSConfig mDNS发现配置
type MDNSConfig struct {
	Enabled     bool   `json:"enabled"`      // 是否启用mDNS
	ServiceName string `json:"service_name"` // 服务名称
}

// Config 节点配置实现
type Config struct {
	options *NodeOptions
}

// New 创建节点配置
func New(userConfig *types.UserNodeConfig) *Config {
	options := createDefaultNodeOptions()
	if userConfig != nil {
		applyUserNodeConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultNodeOptions() *NodeOptions {
	return &NodeOptions{
		Host: HostConfig{
			ListenAddresses: []string{defaultListenAddress},
			Security:        SecurityConfig{EnableTLS: defaultEnableTLS, EnableNoise: defaultEnableNoise},
		},
		Identity: IdentityConfig{
			KeyFile: defaultIdentityKeyFile,
			Persist: defaultPersistIdentity,
		},
		Discovery: DiscoveryConfig{
			MDNS:            MDNSConfig{Enabled: defaultMDNSEnabled, ServiceName: defaultMDNSServiceName},
			BeaconInterval:  defaultBeaconInterval,
			PeerTTL:         defaultPeerTTL,
			SweepInterval:   defaultSweepInterval,
			ConnectTimeout:  defaultConnectTimeout,
			BeaconQueueSize: defaultBeaconQueueSize,
		},
	}
}

func applyUserNodeConfig(options *NodeOptions, userConfig *types.UserNodeConfig) {
	if len(userConfig.ListenAddresses) > 0 {
		options.Host.ListenAddresses = append([]string(nil), userConfig.ListenAddresses...)
	}
	if userConfig.IdentityKeyFile != nil && *userConfig.IdentityKeyFile != "" {
		options.Identity.KeyFile = *userConfig.IdentityKeyFile
	}
	if userConfig.PersistIdentity != nil {
		options.Identity.Persist = *userConfig.PersistIdentity
	}
	if userConfig.EnableMDNS != nil {
		options.Discovery.MDNS.Enabled = *userConfig.EnableMDNS
	}
	if userConfig.MDNSServiceName != nil && *userConfig.MDNSServiceName != "" {
		options.Discovery.MDNS.ServiceName = *userConfig.MDNSServiceName
	}
	parseDuration(userConfig.BeaconInterval, &options.Discovery.BeaconInterval)
	parseDuration(userConfig.PeerTTL, &options.Discovery.PeerTTL)
	parseDuration(userConfig.SweepInterval, &options.Discovery.SweepInterval)
	parseDuration(userConfig.ConnectTimeout, &options.Discovery.ConnectTimeout)

	// TTL 不得短于一个信标周期，否则活跃节点会在两次信标之间被误判过期
	if options.Discovery.PeerTTL <= options.Discovery.BeaconInterval {
		options.Discovery.PeerTTL = 3 * options.Discovery.BeaconInterval
	}
}

func parseDuration(raw *string, target *time.Duration) {
	if raw == nil {
		return
	}
	if d, err := time.ParseDuration(*raw); err == nil && d > 0 {
		*target = d
	}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *NodeOptions {
	return c.options
}
