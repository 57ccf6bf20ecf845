package config

import "github.com/weisyn/casnode/pkg/types"

// AppOptions 应用配置选项接口
// 提供获取应用配置的统一接口
type AppOptions interface {
	// GetAppConfig 获取应用配置（可能为 nil，表示全部使用默认值）
	GetAppConfig() *types.AppConfig
}
