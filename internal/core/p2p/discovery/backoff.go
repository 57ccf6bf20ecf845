package discovery

import (
	"math/rand"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

// dialBackoff 按节点记录直连失败后的冷却期
//
// 第 n 次连续失败的冷却为 base*2^(n-1)，封顶 max，再乘以 [1-jitter, 1+jitter] 的随机系数，
// 避免局域网内多个节点同时重拨。连接成功或节点过期时清零。调用方持锁。
type dialBackoff struct {
	base   time.Duration
	max    time.Duration
	jitter float64
	peers  map[peer.ID]*dialAttempt
}

type dialAttempt struct {
	failures int
	until    time.Time
}

func newDialBackoff(base, max time.Duration, jitter float64) *dialBackoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	if jitter < 0 || jitter > 1 {
		jitter = 0.2
	}
	return &dialBackoff{base: base, max: max, jitter: jitter, peers: make(map[peer.ID]*dialAttempt)}
}

// ready 冷却期已过或从未失败
func (d *dialBackoff) ready(id peer.ID, now time.Time) bool {
	a, ok := d.peers[id]
	return !ok || !now.Before(a.until)
}

// fail 记录一次失败并返回本次冷却时长
func (d *dialBackoff) fail(id peer.ID, now time.Time) time.Duration {
	a, ok := d.peers[id]
	if !ok {
		a = &dialAttempt{}
		d.peers[id] = a
	}
	a.failures++
	wait := d.cooldown(a.failures)
	a.until = now.Add(wait)
	return wait
}

// reset 清除节点的失败记录
func (d *dialBackoff) reset(id peer.ID) {
	delete(d.peers, id)
}

func (d *dialBackoff) failures(id peer.ID) int {
	if a, ok := d.peers[id]; ok {
		return a.failures
	}
	return 0
}

func (d *dialBackoff) cooldown(failures int) time.Duration {
	wait := d.base
	for i := 1; i < failures && wait < d.max; i++ {
		wait *= 2
	}
	if wait > d.max {
		wait = d.max
	}
	return jitter(wait, d.jitter)
}

// jitter 将 d 乘以 [1-frac, 1+frac] 内的随机系数
func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	//nolint:gosec // G404: 抖动不需要密码学安全的随机数
	f := 1 + (rand.Float64()*2-1)*frac
	return time.Duration(float64(d) * f)
}
