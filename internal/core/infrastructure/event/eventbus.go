// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"context"
	"fmt"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

var publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "casnode",
	Subsystem: "event",
	Name:      "published_total",
	Help:      "按类型统计的已发布事件数",
}, []string{"type"})

// EventBus 是对asaskevich/EventBus的薄封装
//
// 停止后的 Publish 静默丢弃，避免关停阶段的迟到事件触发已释放的订阅者。
type EventBus struct {
	bus     evbus.Bus
	logger  log.Logger
	stopped atomic.Bool
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线实例
func New(logger log.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if err := eb.bus.Subscribe(string(eventType), handler); err != nil {
		return fmt.Errorf("订阅事件 %s 失败: %w", eventType, err)
	}
	return nil
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if err := eb.bus.SubscribeAsync(string(eventType), handler, transactional); err != nil {
		return fmt.Errorf("异步订阅事件 %s 失败: %w", eventType, err)
	}
	return nil
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if eb.stopped.Load() {
		return
	}
	publishedTotal.WithLabelValues(string(eventType)).Inc()
	if eb.logger != nil {
		eb.logger.Debugf("发布事件: %s", eventType)
	}
	eb.bus.Publish(string(eventType), args...)
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// Stop 停止发布并等待在途的异步处理器
func (eb *EventBus) Stop(ctx context.Context) error {
	if !eb.stopped.CompareAndSwap(false, true) {
		return nil
	}
	done := make(chan struct{})
	go func() {
		eb.bus.WaitAsync()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("等待异步事件处理超时: %w", ctx.Err())
	}
}
