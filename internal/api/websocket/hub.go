// Package websocket 将节点事件以 JSON 推送给 websocket 客户端
//
// 事件总线上的每类事件都以异步订阅转发；每个客户端拥有有界发送队列，
// 慢客户端的队列满时丢弃该条事件，不阻塞总线与其他客户端。
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message 推送给客户端的事件
type Message struct {
	Type      event.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      interface{}     `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub 事件推送中心
type Hub struct {
	bus       event.EventBus
	logger    logiface.Logger
	queueSize int
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	handlers map[event.EventType]func(context.Context, interface{})
	closed   bool
}

// NewHub 创建推送中心，queueSize 为每客户端缓冲
func NewHub(bus event.EventBus, queueSize int, logger logiface.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Hub{
		bus:       bus,
		logger:    logger,
		queueSize: queueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// 节点 API 默认只监听回环地址，不做来源限制
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		handlers: make(map[event.EventType]func(context.Context, interface{})),
	}
}

// Start 订阅全部事件类型
func (h *Hub) Start(context.Context) error {
	if h.bus == nil {
		return nil
	}
	for _, t := range event.AllEventTypes() {
		eventType := t
		fn := func(_ context.Context, data interface{}) {
			h.Broadcast(eventType, data)
		}
		if err := h.bus.SubscribeAsync(eventType, fn, false); err != nil {
			return err
		}
		h.mu.Lock()
		h.handlers[eventType] = fn
		h.mu.Unlock()
	}
	return nil
}

// Stop 取消订阅并断开全部客户端
func (h *Hub) Stop(context.Context) error {
	h.mu.Lock()
	h.closed = true
	handlers := h.handlers
	h.handlers = make(map[event.EventType]func(context.Context, interface{}))
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	if h.bus != nil {
		for t, fn := range handlers {
			_ = h.bus.Unsubscribe(t, fn)
		}
	}
	for c := range clients {
		c.close()
	}
	return nil
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast 向全部客户端推送事件
func (h *Hub) Broadcast(eventType event.EventType, data interface{}) {
	payload, err := json.Marshal(Message{Type: eventType, Timestamp: time.Now().UTC(), Data: data})
	if err != nil {
		h.logWarnf("事件序列化失败 type=%s: %v", eventType, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logWarnf("客户端 %s 发送队列已满，丢弃事件 %s", c.conn.RemoteAddr(), eventType)
		}
	}
}

// ServeWS 升级连接并注册客户端（Gin Handler）
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logWarnf("websocket 升级失败: %v", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, h.queueSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)
	h.readPump(cl)
}

// readPump 只用于感知断开与处理 pong
func (h *Hub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logDebugf("websocket 连接异常关闭: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()
	if ok {
		cl.close()
	}
}

func (h *Hub) logDebugf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Debugf(format, args...)
	}
}

func (h *Hub) logWarnf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Warnf(format, args...)
	}
}
