package cas

import (
	"context"
	"errors"
	"fmt"

	"github.com/allegro/bigcache/v3"

	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/pkg/types"
)

// objectCache 热点对象读缓存
//
// 只缓存不超过 maxEntry 字节的对象；缓存是纯加速层，
// 任何缓存错误都退化为直接读盘。
type objectCache struct {
	cache    *bigcache.BigCache
	maxEntry int
}

func newObjectCache(opts storageconfig.CacheOptions) (*objectCache, error) {
	cfg := bigcache.DefaultConfig(opts.TTL)
	// 分片上限 = HardMaxCacheSize/Shards，需容纳 maxEntry 大小的对象
	cfg.Shards = 16
	cfg.HardMaxCacheSize = opts.SizeMB
	// MaxEntrySize 仅用于预分配，取较小的典型值
	cfg.MaxEntrySize = 16 << 10
	cfg.MaxEntriesInWindow = 1024
	cfg.CleanWindow = opts.TTL / 2
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建对象缓存失败: %w", err)
	}
	return &objectCache{cache: cache, maxEntry: opts.MaxEntryBytes}, nil
}

func (c *objectCache) get(id types.ContentID) ([]byte, bool) {
	data, err := c.cache.Get(id.String())
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *objectCache) set(id types.ContentID, payload []byte) {
	if len(payload) > c.maxEntry {
		return
	}
	_ = c.cache.Set(id.String(), payload)
}

func (c *objectCache) close() error {
	if err := c.cache.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
