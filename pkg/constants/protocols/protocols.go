// Package protocols 节点间网络协议常量
//
// 流协议采用 /casnode/<action>/<semver> 格式；gossip 主题与 mDNS 服务名
// 需在同一网络的所有节点间保持一致，修改即意味着网络分区。
package protocols

// 直连流协议
const (
	// ProtocolFetch 按内容标识符拉取负载
	ProtocolFetch = "/casnode/fetch/1.0.0"

	// ProtocolQueryResponse 应答方向查询方回送 QueryResponse
	ProtocolQueryResponse = "/casnode/query-response/1.0.0"
)

// 广播与发现
const (
	// TopicContent 内容公告与查询的 gossip 主题
	TopicContent = "casnode/content/1.0.0"

	// MDNSServiceName 局域网发现使用的 mDNS 服务名
	MDNSServiceName = "casnode"
)
