// Package p2p 定义点对点层（身份、发现、复制）的对外接口
package p2p

import (
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
)

// Identity 本节点的长期密码学身份
//
// 私钥只用于进程内签名，任何情况下都不会被序列化到网络上。
type Identity interface {
	// PeerID 由公钥派生的节点标识
	PeerID() peer.ID
	// PublicKey 公钥
	PublicKey() crypto.PubKey
	// PrivateKey 私钥（仅供 libp2p 主机与本地签名使用）
	PrivateKey() crypto.PrivKey
	// Sign 使用私钥签名
	Sign(data []byte) ([]byte, error)
}
