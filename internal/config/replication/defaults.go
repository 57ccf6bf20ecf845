// Package replication 提供复制/公告层配置
package replication

import (
	"time"

	"github.com/weisyn/casnode/pkg/constants/protocols"
)

const (
	// defaultTopic gossip 主题
	defaultTopic = protocols.TopicContent

	// defaultQueryTimeout 网络查询的墙钟上限
	defaultQueryTimeout = 5 * time.Second

	// defaultFetchTimeout 单个候选节点的直连拉取上限
	defaultFetchTimeout = 3 * time.Second

	// defaultResponseTimeout 向查询方回送应答的上限
	defaultResponseTimeout = 2 * time.Second

	defaultInboxSize    = 256
	defaultOutboxSize   = 256
	defaultResponseSize = 64

	// defaultQueryRateLimit 每秒最多应答的查询数
	defaultQueryRateLimit = 50.0
	defaultQueryBurst     = 100

	// defaultSeenCacheSize 已处理查询ID去重缓存容量
	defaultSeenCacheSize = 4096
	defaultSeenTTL       = 2 * time.Minute

	// defaultAnnouncementTTL 公告记录保留时间
	defaultAnnouncementTTL = 30 * time.Minute

	// defaultMaxMessageAge 早于该时间的 gossip 消息视为重放并丢弃
	defaultMaxMessageAge = 5 * time.Minute
)
