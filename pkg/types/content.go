package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"

	sha256 "github.com/minio/sha256-simd"
)

// ContentIDSize 内容标识符字节长度（SHA-256）
const ContentIDSize = sha256.Size

// ErrInvalidContentID 内容标识符文本格式非法
var ErrInvalidContentID = errors.New("内容标识符格式非法")

// ContentID 内容标识符
//
// 🎯 **内容寻址**：
// 对负载原始字节做 SHA-256 得到的固定 32 字节摘要。
// 相同字节总是得到相同标识符；规范文本形式为 64 位小写十六进制，
// 既用作磁盘文件名主干，也用作 gossip 消息中的令牌。
type ContentID [ContentIDSize]byte

// Identify 计算负载的内容标识符（空负载同样合法）
func Identify(payload []byte) ContentID {
	return ContentID(sha256.Sum256(payload))
}

// Hasher 流式计算内容标识符
type Hasher struct {
	h hash.Hash
}

// NewHasher 创建流式哈希器
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write 实现 io.Writer
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum 已写入字节的内容标识符
func (h *Hasher) Sum() ContentID {
	var id ContentID
	copy(id[:], h.h.Sum(nil))
	return id
}

// ParseContentID 解析十六进制文本形式的内容标识符
// 大小写均可接受，统一规范化为小写
func ParseContentID(s string) (ContentID, error) {
	var id ContentID
	s = strings.TrimSpace(s)
	if len(s) != hex.EncodedLen(ContentIDSize) {
		return id, fmt.Errorf("%w: 长度 %d", ErrInvalidContentID, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(strings.ToLower(s))); err != nil {
		return ContentID{}, fmt.Errorf("%w: %v", ErrInvalidContentID, err)
	}
	return id, nil
}

// ContentIDFromBytes 从原始字节构造内容标识符
func ContentIDFromBytes(b []byte) (ContentID, error) {
	var id ContentID
	if len(b) != ContentIDSize {
		return id, fmt.Errorf("%w: 字节长度 %d", ErrInvalidContentID, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String 返回小写十六进制形式
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes 返回原始字节副本
func (id ContentID) Bytes() []byte {
	b := make([]byte, ContentIDSize)
	copy(b, id[:])
	return b
}

// IsZero 是否为零值
func (id ContentID) IsZero() bool {
	return id == ContentID{}
}

// MarshalText 实现 encoding.TextMarshaler
func (id ContentID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (id *ContentID) UnmarshalText(text []byte) error {
	parsed, err := ParseContentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ObjectInfo 已存储对象的簿记信息
//
// Size 与 CreatedAt 直接来自对象文件本身，不维护额外索引。
type ObjectInfo struct {
	ID        ContentID `json:"id"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
