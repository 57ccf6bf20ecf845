// Package cas 实现本地内容寻址存储
//
// 📋 **布局**
//
// 每个对象保存为 <root>/<hex>.dat，hex 为负载 SHA-256 的小写十六进制。
// 对象文件是唯一持久化状态：大小与创建时间直接取自文件元数据，
// 不存在额外的索引或数据库，目录可直接备份或复制到其他节点。
package cas

import (
	"github.com/weisyn/casnode/pkg/interfaces/storage"
	"github.com/weisyn/casnode/pkg/types"
)

// SHA256Addresser 基于 SHA-256 的内容寻址实现
type SHA256Addresser struct{}

var _ storage.Addresser = SHA256Addresser{}

// Identify 计算负载的内容标识符
func (SHA256Addresser) Identify(payload []byte) types.ContentID {
	return types.Identify(payload)
}
