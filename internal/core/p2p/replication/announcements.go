package replication

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/weisyn/casnode/pkg/types"
)

// AnnouncementBook 内容 → 持有者 的咨询性索引
//
// 记录仅作参考：持有者可能已离线或删除内容，拉取时仍需校验哈希。
type AnnouncementBook struct {
	mu      sync.RWMutex
	clock   clock.Clock
	ttl     time.Duration
	entries map[types.ContentID]map[peer.ID]time.Time
}

// NewAnnouncementBook 创建公告簿，ttl<=0 表示不过期
func NewAnnouncementBook(ttl time.Duration, clk clock.Clock) *AnnouncementBook {
	if clk == nil {
		clk = clock.New()
	}
	return &AnnouncementBook{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[types.ContentID]map[peer.ID]time.Time),
	}
}

// Add 记录 holder 持有 id
func (b *AnnouncementBook) Add(id types.ContentID, holder peer.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	holders, ok := b.entries[id]
	if !ok {
		holders = make(map[peer.ID]time.Time)
		b.entries[id] = holders
	}
	holders[holder] = b.clock.Now()
}

func (b *AnnouncementBook) fresh(at, now time.Time) bool {
	return b.ttl <= 0 || now.Sub(at) < b.ttl
}

// Holders 未过期的持有者，最近公告者在前
func (b *AnnouncementBook) Holders(id types.ContentID) []types.Holder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	now := b.clock.Now()
	out := make([]types.Holder, 0, len(b.entries[id]))
	for p, at := range b.entries[id] {
		if b.fresh(at, now) {
			out = append(out, types.Holder{Peer: p, LastAnnounced: at})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAnnounced.Equal(out[j].LastAnnounced) {
			return out[i].LastAnnounced.After(out[j].LastAnnounced)
		}
		return out[i].Peer < out[j].Peer
	})
	return out
}

// RemovePeer 删除某节点的全部公告，返回删除条数
func (b *AnnouncementBook) RemovePeer(p peer.ID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, holders := range b.entries {
		if _, ok := holders[p]; ok {
			delete(holders, p)
			removed++
		}
		if len(holders) == 0 {
			delete(b.entries, id)
		}
	}
	return removed
}

// Prune 清理过期公告
func (b *AnnouncementBook) Prune() int {
	if b.ttl <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.clock.Now()
	removed := 0
	for id, holders := range b.entries {
		for p, at := range holders {
			if !b.fresh(at, now) {
				delete(holders, p)
				removed++
			}
		}
		if len(holders) == 0 {
			delete(b.entries, id)
		}
	}
	return removed
}

// Len 已记录的内容数
func (b *AnnouncementBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
