package cas

import "errors"

var (
	// ErrStorageIO 底层文件系统读写失败，负载必须视为未持久化
	ErrStorageIO = errors.New("存储I/O失败")

	// ErrObjectTooLarge 负载超过单对象大小上限
	ErrObjectTooLarge = errors.New("对象超过大小上限")

	// ErrStoreClosed 存储已关闭
	ErrStoreClosed = errors.New("内容存储已关闭")
)
