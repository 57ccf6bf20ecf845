package identity

import "errors"

var (
	// ErrSignatureVerification 签名无效或公钥与声明的节点标识不符
	ErrSignatureVerification = errors.New("签名验证失败")

	// ErrKeyFile 密钥文件无法读取或解析
	ErrKeyFile = errors.New("身份密钥文件无效")
)
