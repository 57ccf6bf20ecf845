// Package version provides version information for the application.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时注入的变量，通过ldflags设置
var (
	// 语义化版本信息
	Version = "1.0.0"

	// 构建信息
	BuildTime = "unknown"     // 构建时间戳（RFC3339格式）
	BuildEnv  = "development" // 构建环境：development, testing, production

	GoVersion = runtime.Version()
	GoArch    = runtime.GOARCH
	GoOS      = runtime.GOOS
)

// BuildInfo 完整构建信息结构
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	BuildEnv  string `json:"build_env"`
	GoVersion string `json:"go_version"`
	GoArch    string `json:"go_arch"`
	GoOS      string `json:"go_os"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		BuildEnv:  BuildEnv,
		GoVersion: GoVersion,
		GoArch:    GoArch,
		GoOS:      GoOS,
	}
}

// GetFullVersion 获取完整版本信息（用于 version 子命令）
func GetFullVersion() string {
	info := GetBuildInfo()

	out := fmt.Sprintf("casnode %s", info.Version)
	if info.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			out += fmt.Sprintf("\n构建时间: %s", parsed.Format("2006-01-02 15:04:05 MST"))
		} else {
			out += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}
	out += fmt.Sprintf("\n构建环境: %s", info.BuildEnv)
	out += fmt.Sprintf("\nGo版本: %s", info.GoVersion)
	out += fmt.Sprintf("\n平台: %s/%s", info.GoOS, info.GoArch)
	return out
}
