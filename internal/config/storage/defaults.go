// Package storage 提供本地内容存储的配置
package storage

import (
	"os"
	"time"
)

// 默认配置值
const (
	// defaultRootPath 对象文件根目录，与 STORAGE_PATH 默认值一致
	defaultRootPath = "./data"

	// defaultMaxObjectSize 单个对象上限 64MB（不支持分块传输）
	defaultMaxObjectSize = int64(64 << 20)

	defaultFilePermissions      = os.FileMode(0o644)
	defaultDirectoryPermissions = os.FileMode(0o755)

	// === 热点缓存（bigcache） ===
	defaultCacheEnabled = true
	defaultCacheSizeMB  = 128
	defaultCacheTTL     = 10 * time.Minute
	// defaultCacheMaxEntryBytes 超过该大小的对象不进入缓存
	defaultCacheMaxEntryBytes = 4 << 20
)
