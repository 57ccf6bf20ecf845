package replication

import (
	"time"

	"github.com/weisyn/casnode/pkg/types"
)

// ReplicationOptions 复制/公告层配置选项
type ReplicationOptions struct {
	Topic           string        `json:"topic"`
	QueryTimeout    time.Duration `json:"query_timeout"`
	FetchTimeout    time.Duration `json:"fetch_timeout"`
	ResponseTimeout time.Duration `json:"response_timeout"`

	// 有界队列容量
	InboxSize    int `json:"inbox_size"`
	OutboxSize   int `json:"outbox_size"`
	ResponseSize int `json:"response_size"`

	QueryRateLimit float64 `json:"query_rate_limit"`
	QueryBurst     int     `json:"query_burst"`

	SeenCacheSize   int           `json:"seen_cache_size"`
	SeenTTL         time.Duration `json:"seen_ttl"`
	AnnouncementTTL time.Duration `json:"announcement_ttl"`
	MaxMessageAge   time.Duration `json:"max_message_age"`
}

// Config 复制层配置实现
type Config struct {
	options *ReplicationOptions
}

// New 创建复制层配置
func New(userConfig *types.UserReplicationConfig) *Config {
	options := createDefaultReplicationOptions()
	if userConfig != nil {
		applyUserReplicationConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultReplicationOptions() *ReplicationOptions {
	return &ReplicationOptions{
		Topic:           defaultTopic,
		QueryTimeout:    defaultQueryTimeout,
		FetchTimeout:    defaultFetchTimeout,
		ResponseTimeout: defaultResponseTimeout,
		InboxSize:       defaultInboxSize,
		OutboxSize:      defaultOutboxSize,
		ResponseSize:    defaultResponseSize,
		QueryRateLimit:  defaultQueryRateLimit,
		QueryBurst:      defaultQueryBurst,
		SeenCacheSize:   defaultSeenCacheSize,
		SeenTTL:         defaultSeenTTL,
		AnnouncementTTL: defaultAnnouncementTTL,
		MaxMessageAge:   defaultMaxMessageAge,
	}
}

func applyUserReplicationConfig(options *ReplicationOptions, userConfig *types.UserReplicationConfig) {
	if userConfig.Topic != nil && *userConfig.Topic != "" {
		options.Topic = *userConfig.Topic
	}
	parseDuration(userConfig.QueryTimeout, &options.QueryTimeout)
	parseDuration(userConfig.FetchTimeout, &options.FetchTimeout)
	parseDuration(userConfig.AnnouncementTTL, &options.AnnouncementTTL)
	if userConfig.InboxSize != nil && *userConfig.InboxSize > 0 {
		options.InboxSize = *userConfig.InboxSize
	}
	if userConfig.OutboxSize != nil && *userConfig.OutboxSize > 0 {
		options.OutboxSize = *userConfig.OutboxSize
	}
	if userConfig.QueryRateLimit != nil && *userConfig.QueryRateLimit > 0 {
		options.QueryRateLimit = *userConfig.QueryRateLimit
	}
}

// parseDuration 解析失败或非正值时保留默认值
func parseDuration(raw *string, target *time.Duration) {
	if raw == nil {
		return
	}
	if d, err := time.ParseDuration(*raw); err == nil && d > 0 {
		*target = d
	}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *ReplicationOptions {
	return c.options
}
