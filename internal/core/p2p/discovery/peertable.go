package discovery

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/types"
)

// PeerTable 节点记录表
//
// 状态机：Unknown --信标--> Active --信标--> Active（刷新）
// Active --超过 TTL 未刷新--> Expired（清扫时移除）。
//
// 查询方法按当前时间过滤，超过 TTL 的记录即使尚未被清扫也不会返回。
type PeerTable struct {
	mu      sync.RWMutex
	clock   clock.Clock
	ttl     time.Duration
	records map[peer.ID]*types.PeerRecord
}

var _ p2p.PeerDirectory = (*PeerTable)(nil)

// NewPeerTable 创建节点记录表
func NewPeerTable(ttl time.Duration, clk clock.Clock) *PeerTable {
	if clk == nil {
		clk = clock.New()
	}
	return &PeerTable{
		clock:   clk,
		ttl:     ttl,
		records: make(map[peer.ID]*types.PeerRecord),
	}
}

// TTL 记录过期时间
func (t *PeerTable) TTL() time.Duration {
	return t.ttl
}

func (t *PeerTable) fresh(rec *types.PeerRecord, now time.Time) bool {
	return now.Sub(rec.LastSeen) < t.ttl
}

// Observe 处理一次信标，返回更新后的记录以及是否为新进入活跃集合的节点
//
// 已过期但尚未清扫的记录视为重新出现，FirstSeen 重置。
func (t *PeerTable) Observe(info peer.AddrInfo) (types.PeerRecord, bool) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[info.ID]
	isNew := !ok || !t.fresh(rec, now)
	if isNew {
		rec = &types.PeerRecord{ID: info.ID, FirstSeen: now}
		t.records[info.ID] = rec
	}
	rec.LastSeen = now
	rec.State = types.PeerStateActive
	if len(info.Addrs) > 0 {
		rec.Addrs = append([]ma.Multiaddr(nil), info.Addrs...)
	}
	return copyRecord(rec), isNew
}

// Active 当前活跃节点，按节点标识排序
func (t *PeerTable) Active() []types.PeerRecord {
	now := t.clock.Now()

	t.mu.RLock()
	out := make([]types.PeerRecord, 0, len(t.records))
	for _, rec := range t.records {
		if t.fresh(rec, now) {
			out = append(out, copyRecord(rec))
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsActive 节点是否活跃
func (t *PeerTable) IsActive(id peer.ID) bool {
	_, ok := t.Get(id)
	return ok
}

// Get 获取活跃节点记录
func (t *PeerTable) Get(id peer.ID) (types.PeerRecord, bool) {
	now := t.clock.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.records[id]
	if !ok || !t.fresh(rec, now) {
		return types.PeerRecord{}, false
	}
	return copyRecord(rec), true
}

// Len 活跃节点数
func (t *PeerTable) Len() int {
	now := t.clock.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, rec := range t.records {
		if t.fresh(rec, now) {
			n++
		}
	}
	return n
}

// Sweep 移除过期记录并返回它们（State=Expired）
func (t *PeerTable) Sweep() []types.PeerRecord {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []types.PeerRecord
	for id, rec := range t.records {
		if t.fresh(rec, now) {
			continue
		}
		rec.State = types.PeerStateExpired
		expired = append(expired, copyRecord(rec))
		delete(t.records, id)
	}
	return expired
}

func copyRecord(rec *types.PeerRecord) types.PeerRecord {
	out := *rec
	out.Addrs = append([]ma.Multiaddr(nil), rec.Addrs...)
	return out
}
