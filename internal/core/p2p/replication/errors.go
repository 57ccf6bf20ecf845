package replication

import "errors"

var (
	// ErrContentIntegrity 拉取到的字节哈希与请求的标识符不符
	ErrContentIntegrity = errors.New("内容完整性校验失败")

	// ErrPeerUnreachable 无法建立连接或流中断
	ErrPeerUnreachable = errors.New("节点不可达")

	// ErrContentNotFound 网络中没有节点在时限内提供该内容
	ErrContentNotFound = errors.New("内容未找到")

	// ErrMalformedMessage 消息无法解码或字段缺失
	ErrMalformedMessage = errors.New("消息格式非法")

	// ErrStaleMessage 消息时间戳超出可接受窗口
	ErrStaleMessage = errors.New("消息已过期")

	// ErrNotStarted 复制服务尚未启动
	ErrNotStarted = errors.New("复制服务未启动")
)
