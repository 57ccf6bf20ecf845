// Package writegate 提供本地写入门闸
package writegate

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	wgif "github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
)

var (
	readOnlyGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "casnode",
		Subsystem: "storage",
		Name:      "read_only",
		Help:      "1 when local writes are blocked",
	})
	blockedWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casnode",
		Subsystem: "storage",
		Name:      "blocked_writes_total",
		Help:      "Writes rejected by the write gate",
	}, []string{"op"})
)

// gateImpl WriteGate 的默认实现
//
// 线程安全：使用 RWMutex 保护内部状态
type gateImpl struct {
	mu sync.RWMutex

	readOnly   bool
	reason     string
	readOnlyAt time.Time
}

// 编译时检查：确保 gateImpl 实现了 WriteGate 接口
var _ wgif.WriteGate = (*gateImpl)(nil)

// New 创建写入门闸，初始为可写
func New() wgif.WriteGate {
	return &gateImpl{}
}

// EnterReadOnly 进入只读模式
func (g *gateImpl) EnterReadOnly(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.readOnly {
		g.readOnlyAt = time.Now()
	}
	g.readOnly = true
	g.reason = reason
	readOnlyGauge.Set(1)
}

// ExitReadOnly 退出只读模式
func (g *gateImpl) ExitReadOnly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.readOnly = false
	g.reason = ""
	g.readOnlyAt = time.Time{}
	readOnlyGauge.Set(0)
}

// IsReadOnly 检查是否处于只读模式
func (g *gateImpl) IsReadOnly() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.readOnly
}

// ReadOnlyReason 返回只读模式的原因
func (g *gateImpl) ReadOnlyReason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reason
}

// AssertWriteAllowed 校验写操作是否允许
func (g *gateImpl) AssertWriteAllowed(op string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.readOnly {
		blockedWrites.WithLabelValues(op).Inc()
		return fmt.Errorf("%w: op=%s reason=%s since=%s", wgif.ErrReadOnly, op, g.reason, g.readOnlyAt.Format(time.RFC3339))
	}
	return nil
}
