package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/types"
)

// TestPublishWithContext_WithAsyncSubscriber_DeliversEvent 测试统一发布参数顺序
func TestPublishWithContext_WithAsyncSubscriber_DeliversEvent(t *testing.T) {
	// Arrange
	bus := New(nil)
	var (
		mu       sync.Mutex
		received *types.PeerExpiredEvent
	)
	handler := func(_ context.Context, evt *types.PeerExpiredEvent) {
		mu.Lock()
		received = evt
		mu.Unlock()
	}
	require.NoError(t, bus.SubscribeAsync(event.EventTypePeerExpired, handler, false))

	// Act
	event.PublishWithContext(bus, context.Background(), event.EventTypePeerExpired,
		&types.PeerExpiredEvent{Peer: "peer-a", LastSeen: time.Unix(10, 0)})
	bus.WaitAsync()

	// Assert
	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received, "异步订阅者应收到事件")
	assert.Equal(t, "peer-a", string(received.Peer))
}

// TestPublish_WithSyncSubscriber_DeliversInline 测试同步订阅
func TestPublish_WithSyncSubscriber_DeliversInline(t *testing.T) {
	bus := New(nil)
	calls := 0
	require.NoError(t, bus.Subscribe(event.EventType("test"), func(s string) {
		assert.Equal(t, "hello", s)
		calls++
	}))

	bus.Publish(event.EventType("test"), "hello")

	assert.Equal(t, 1, calls)
	assert.True(t, bus.HasCallback(event.EventType("test")))
	assert.False(t, bus.HasCallback(event.EventTypeContentStored))
}

// TestStop_WithLatePublish_DropsEvent 测试停止后的发布被丢弃
func TestStop_WithLatePublish_DropsEvent(t *testing.T) {
	bus := New(nil)
	calls := 0
	require.NoError(t, bus.Subscribe(event.EventType("late"), func() { calls++ }))

	require.NoError(t, bus.Stop(context.Background()))
	bus.Publish(event.EventType("late"))

	assert.Zero(t, calls, "停止后不应再投递事件")
	assert.NoError(t, bus.Stop(context.Background()), "重复停止应为空操作")
}

// TestPublishWithContext_WithNilBus_IsNoop 测试空总线
func TestPublishWithContext_WithNilBus_IsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		event.PublishWithContext(nil, context.Background(), event.EventTypeContentStored, &types.ContentStoredEvent{})
	})
}
