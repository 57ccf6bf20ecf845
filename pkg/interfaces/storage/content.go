// Package storage 定义内容寻址存储接口
//
// 🎯 **核心职责**：
// - 以内容标识符为唯一键持久化负载
// - 幂等写入：相同内容只落盘一次
// - 缺失不是错误：Get/Has 以布尔值表达存在性
package storage

import (
	"context"

	"github.com/weisyn/casnode/pkg/types"
)

// ContentStore 本地内容存储接口
type ContentStore interface {
	// Put 计算标识符并持久化负载
	// created=false 表示内容已存在、本次写入被跳过
	// 返回 error 时调用方必须视负载为未持久化
	Put(ctx context.Context, payload []byte) (info types.ObjectInfo, created bool, err error)

	// Get 读取负载，不存在时返回 (nil, false, nil)
	Get(ctx context.Context, id types.ContentID) ([]byte, bool, error)

	// Has 仅检查存在性，不读取负载
	Has(ctx context.Context, id types.ContentID) (bool, error)

	// Stat 获取对象簿记信息
	Stat(ctx context.Context, id types.ContentID) (types.ObjectInfo, bool, error)

	// List 列出所有已存储对象（按创建时间倒序）
	List(ctx context.Context) ([]types.ObjectInfo, error)
}

// Addresser 内容寻址函数
type Addresser interface {
	// Identify 计算负载的内容标识符，纯函数，无失败模式
	Identify(payload []byte) types.ContentID
}
