package node

import (
	"time"

	"github.com/weisyn/casnode/pkg/constants/protocols"
)

// 节点网络默认配置值
const (
	// defaultListenAddress libp2p TCP 监听地址，监听全部接口以便 mDNS 公告局域网地址；NODE_ADDRESS 可覆盖
	defaultListenAddress = "0.0.0.0:4000"

	// defaultIdentityKeyFile 身份私钥持久化文件
	defaultIdentityKeyFile = "./keys/node.key"

	// defaultPersistIdentity 默认持久化身份，保证重启后 PeerID 稳定
	defaultPersistIdentity = true

	// === mDNS 发现 ===
	defaultMDNSEnabled     = true
	defaultMDNSServiceName = protocols.MDNSServiceName

	// defaultBeaconInterval 信标周期：每个周期重新发布 mDNS 服务，促使邻居重新发现
	defaultBeaconInterval = 10 * time.Second

	// defaultPeerTTL 节点记录在该时间内未刷新即过期（3 个信标周期）
	defaultPeerTTL = 30 * time.Second

	// defaultSweepInterval 过期清扫周期
	defaultSweepInterval = 5 * time.Second

	// defaultConnectTimeout 发现后直连超时
	defaultConnectTimeout = 10 * time.Second

	// defaultBeaconQueueSize 信标入队容量
	defaultBeaconQueueSize = 64

	// === 安全传输 ===
	defaultEnableNoise = true
	defaultEnableTLS   = true
)
