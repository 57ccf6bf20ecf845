// Package writegate 定义本地写入门闸接口
package writegate

import "errors"

// ErrReadOnly 节点处于只读模式，拒绝写入
var ErrReadOnly = errors.New("节点处于只读模式")

// WriteGate 全局写入门闸
//
// 只读模式下所有持久化写入（本地上传与网络拉取后的落盘）都被拒绝，
// 读取路径不受影响。
type WriteGate interface {
	// EnterReadOnly 进入只读模式并记录原因；重复调用只更新原因
	EnterReadOnly(reason string)

	// ExitReadOnly 退出只读模式
	ExitReadOnly()

	// IsReadOnly 是否处于只读模式
	IsReadOnly() bool

	// ReadOnlyReason 只读原因，非只读时为空
	ReadOnlyReason() string

	// AssertWriteAllowed 写入前检查；只读时返回包装了 ErrReadOnly 的错误
	AssertWriteAllowed(op string) error
}
