// Package identity 管理节点的 ed25519 长期身份
//
// 身份在进程生命周期内创建一次。启用持久化时私钥以
// base64(crypto.MarshalPrivateKey) 形式写入密钥文件（0600），
// 重启后 PeerID 保持不变。
package identity

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// Service 节点身份
type Service struct {
	priv crypto.PrivKey
	pub  crypto.PubKey
	id   peer.ID
}

var _ p2p.Identity = (*Service)(nil)

// New 从已有私钥构造身份
func New(priv crypto.PrivKey) (*Service, error) {
	if priv == nil {
		return nil, fmt.Errorf("私钥不能为空")
	}
	id, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("派生节点标识失败: %w", err)
	}
	return &Service{priv: priv, pub: priv.GetPublic(), id: id}, nil
}

// Generate 使用给定熵源生成新的 ed25519 身份
func Generate(entropy io.Reader) (*Service, error) {
	if entropy == nil {
		entropy = rand.Reader
	}
	priv, _, err := crypto.GenerateEd25519Key(entropy)
	if err != nil {
		return nil, fmt.Errorf("生成身份密钥失败: %w", err)
	}
	return New(priv)
}

// LoadOrCreate 按配置加载或生成身份
//
// 优先级：内联 PrivateKey > 已存在的 KeyFile > 新生成。
// 新生成且 Persist=true 时写入 KeyFile。
func LoadOrCreate(cfg nodeconfig.IdentityConfig, logger log.Logger) (*Service, error) {
	if cfg.PrivateKey != "" {
		priv, err := decodeKey([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("解析内联私钥: %w", err)
		}
		return New(priv)
	}

	if cfg.Persist && cfg.KeyFile != "" {
		absPath, err := filepath.Abs(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("解析密钥文件路径失败: %w", err)
		}

		raw, err := os.ReadFile(absPath)
		switch {
		case err == nil:
			priv, err := decodeKey(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", absPath, err)
			}
			svc, err := New(priv)
			if err == nil && logger != nil {
				logger.Infof("已加载节点身份: %s (%s)", svc.PeerID(), absPath)
			}
			return svc, err
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("%w: 读取 %s: %v", ErrKeyFile, absPath, err)
		}

		svc, err := Generate(rand.Reader)
		if err != nil {
			return nil, err
		}
		if err := svc.Save(absPath); err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Infof("已生成并保存节点身份: %s (%s)", svc.PeerID(), absPath)
		}
		return svc, nil
	}

	svc, err := Generate(rand.Reader)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Infof("使用临时节点身份: %s", svc.PeerID())
	}
	return svc, nil
}

// Save 将私钥写入文件（仅所有者可读写）
func (s *Service) Save(path string) error {
	keyBytes, err := crypto.MarshalPrivateKey(s.priv)
	if err != nil {
		return fmt.Errorf("序列化私钥失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("创建密钥目录失败: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(keyBytes)
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("保存身份密钥文件失败: %w", err)
	}
	return nil
}

func decodeKey(raw []byte) (crypto.PrivKey, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: base64 解码: %v", ErrKeyFile, err)
	}
	priv, err := crypto.UnmarshalPrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFile, err)
	}
	return priv, nil
}

// PeerID 节点标识
func (s *Service) PeerID() peer.ID { return s.id }

// PublicKey 公钥
func (s *Service) PublicKey() crypto.PubKey { return s.pub }

// PrivateKey 私钥
func (s *Service) PrivateKey() crypto.PrivKey { return s.priv }

// Sign 使用私钥签名
func (s *Service) Sign(data []byte) ([]byte, error) {
	sig, err := s.priv.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("签名失败: %w", err)
	}
	return sig, nil
}

// Verify 验证签名
//
// pub 为空时从 pid 中提取内嵌公钥（ed25519 标识总是内嵌）。
// 公钥必须能派生出 pid，防止用他人密钥冒充发送者。
func Verify(pid peer.ID, pub crypto.PubKey, data, sig []byte) error {
	if pub == nil {
		extracted, err := pid.ExtractPublicKey()
		if err != nil {
			return fmt.Errorf("%w: 无法获取 %s 的公钥: %v", ErrSignatureVerification, pid, err)
		}
		pub = extracted
	}
	if !pid.MatchesPublicKey(pub) {
		return fmt.Errorf("%w: 公钥与节点标识 %s 不匹配", ErrSignatureVerification, pid)
	}
	ok, err := pub.Verify(data, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}
	if !ok {
		return fmt.Errorf("%w: 来自 %s 的签名无效", ErrSignatureVerification, pid)
	}
	return nil
}
