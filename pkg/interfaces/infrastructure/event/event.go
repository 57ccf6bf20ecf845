// Package event 定义节点内部事件总线接口
//
// 🎯 **事件总线**
//
// 用于模块间解耦通知：存储层发布“内容已存储”，发现层发布“节点发现/过期”，
// 复制层与 API 事件流按需订阅。处理器签名统一为 func(ctx context.Context, evt *T)，
// 发布时按 Publish(eventType, ctx, evt) 传参。
package event

import "context"

// EventType 事件类型
type EventType string

const (
	// EventTypeContentStored 内容首次写入本地存储，数据为 *types.ContentStoredEvent
	EventTypeContentStored EventType = "content.stored"
	// EventTypePeerDiscovered 节点进入活跃集合，数据为 *types.PeerDiscoveredEvent
	EventTypePeerDiscovered EventType = "peer.discovered"
	// EventTypePeerExpired 节点记录过期，数据为 *types.PeerExpiredEvent
	EventTypePeerExpired EventType = "peer.expired"
	// EventTypeAnnouncementReceived 收到有效公告，数据为 *types.AnnouncementReceivedEvent
	EventTypeAnnouncementReceived EventType = "announcement.received"
)

// AllEventTypes 全部已知事件类型
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeContentStored,
		EventTypePeerDiscovered,
		EventTypePeerExpired,
		EventTypeAnnouncementReceived,
	}
}

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 同步订阅事件
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅事件
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// HasCallback 是否存在订阅者
	HasCallback(eventType EventType) bool
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
}

// Publisher 仅发布能力（生产者侧最小依赖）
type Publisher interface {
	Publish(eventType EventType, args ...interface{})
}

// PublishWithContext 以统一参数顺序发布事件，bus 为空时忽略
func PublishWithContext(bus Publisher, ctx context.Context, eventType EventType, data interface{}) {
	if bus == nil || data == nil {
		return
	}
	bus.Publish(eventType, ctx, data)
}
