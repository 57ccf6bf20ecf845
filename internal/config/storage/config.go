package storage

import (
	"os"
	"time"

	"github.com/weisyn/casnode/pkg/types"
)

// StorageOptions 本地内容存储配置选项
type StorageOptions struct {
	RootPath             string      `json:"root_path"`             // 对象文件根目录
	MaxObjectSize        int64       `json:"max_object_size"`       // 单个对象最大字节数
	FilePermissions      os.FileMode `json:"file_permissions"`      // 对象文件权限
	DirectoryPermissions os.FileMode `json:"directory_permissions"` // 目录权限

	Cache CacheOptions `json:"cache"` // 热点对象缓存
}

// CacheOptions 热点对象缓存配置
type CacheOptions struct {
	Enabled       bool          `json:"enabled"`
	SizeMB        int           `json:"size_mb"`
	TTL           time.Duration `json:"ttl"`
	MaxEntryBytes int           `json:"max_entry_bytes"`
}

// Config 存储配置实现
type Config struct {
	options *StorageOptions
}

// New 创建存储配置，userConfig 为空时全部使用默认值
func New(userConfig *types.UserStorageConfig) *Config {
	options := createDefaultStorageOptions()
	if userConfig != nil {
		applyUserStorageConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultStorageOptions() *StorageOptions {
	return &StorageOptions{
		RootPath:             defaultRootPath,
		MaxObjectSize:        defaultMaxObjectSize,
		FilePermissions:      defaultFilePermissions,
		DirectoryPermissions: defaultDirectoryPermissions,
		Cache: CacheOptions{
			Enabled:       defaultCacheEnabled,
			SizeMB:        defaultCacheSizeMB,
			TTL:           defaultCacheTTL,
			MaxEntryBytes: defaultCacheMaxEntryBytes,
		},
	}
}

func applyUserStorageConfig(options *StorageOptions, userConfig *types.UserStorageConfig) {
	if userConfig.RootPath != nil && *userConfig.RootPath != "" {
		options.RootPath = *userConfig.RootPath
	}
	if userConfig.MaxObjectSize != nil && *userConfig.MaxObjectSize > 0 {
		options.MaxObjectSize = *userConfig.MaxObjectSize
	}
	if userConfig.CacheEnabled != nil {
		options.Cache.Enabled = *userConfig.CacheEnabled
	}
	if userConfig.CacheSizeMB != nil && *userConfig.CacheSizeMB > 0 {
		options.Cache.SizeMB = *userConfig.CacheSizeMB
	}
	if userConfig.CacheTTL != nil {
		if d, err := time.ParseDuration(*userConfig.CacheTTL); err == nil && d > 0 {
			options.Cache.TTL = d
		}
	}
}

// GetOptions 获取完整配置
func (c *Config) GetOptions() *StorageOptions {
	return c.options
}

// GetRootPath 获取对象文件根目录
func (c *Config) GetRootPath() string {
	return c.options.RootPath
}

// GetMaxObjectSize 获取单对象大小上限
func (c *Config) GetMaxObjectSize() int64 {
	return c.options.MaxObjectSize
}
