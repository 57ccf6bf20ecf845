package replication

import (
	"fmt"
	"time"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/pkg/types"
)

// MessageType gossip 消息类型
type MessageType uint8

const (
	// MessageAnnounce 宣告本节点持有某内容
	MessageAnnounce MessageType = 1
	// MessageQuery 查询谁持有某内容
	MessageQuery MessageType = 2
	// MessageQueryResponse 对查询的直接应答（不广播）
	MessageQueryResponse MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case MessageAnnounce:
		return "announce"
	case MessageQuery:
		return "query"
	case MessageQueryResponse:
		return "query_response"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

func (t MessageType) valid() bool {
	return t >= MessageAnnounce && t <= MessageQueryResponse
}

// protobuf 字段号
const (
	fieldType      protowire.Number = 1
	fieldSender    protowire.Number = 2
	fieldContentID protowire.Number = 3
	fieldQueryID   protowire.Number = 4
	fieldAddrs     protowire.Number = 5
	fieldTimestamp protowire.Number = 6
	fieldSignature protowire.Number = 15
)

// Envelope 签名的复制层消息
//
// 以 protobuf 线格式编码，字段按固定顺序写出；签名覆盖除签名本身外
// 全部字段的规范编码。解码是无损的：Decode(Encode(e)) 与 e 相等。
type Envelope struct {
	Type      MessageType
	Sender    peer.ID
	ContentID types.ContentID
	QueryID   string         // Query/QueryResponse 必填
	Addrs     []ma.Multiaddr // 发送者的拨号地址，供对方直连
	Timestamp time.Time
	Signature []byte
}

// appendFields 按字段号顺序编码，不含签名
func (e *Envelope) appendFields(b []byte) []byte {
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Type))
	b = protowire.AppendTag(b, fieldSender, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte(e.Sender))
	b = protowire.AppendTag(b, fieldContentID, protowire.BytesType)
	b = protowire.AppendBytes(b, e.ContentID[:])
	if e.QueryID != "" {
		b = protowire.AppendTag(b, fieldQueryID, protowire.BytesType)
		b = protowire.AppendString(b, e.QueryID)
	}
	for _, a := range e.Addrs {
		b = protowire.AppendTag(b, fieldAddrs, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Bytes())
	}
	b = protowire.AppendTag(b, fieldTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Timestamp.UnixNano()))
	return b
}

// SigningBytes 签名覆盖的规范字节
func (e *Envelope) SigningBytes() []byte {
	return e.appendFields(make([]byte, 0, 128))
}

// Marshal 编码完整消息
func (e *Envelope) Marshal() []byte {
	b := e.appendFields(make([]byte, 0, 192))
	if len(e.Signature) > 0 {
		b = protowire.AppendTag(b, fieldSignature, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Signature)
	}
	return b
}

// Unmarshal 解码消息，未知字段忽略
func (e *Envelope) Unmarshal(b []byte) error {
	*e = Envelope{}
	var haveType, haveSender, haveID bool

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: type: %v", ErrMalformedMessage, protowire.ParseError(n))
			}
			e.Type = MessageType(v)
			haveType = true
			b = b[n:]

		case num == fieldTimestamp && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("%w: timestamp: %v", ErrMalformedMessage, protowire.ParseError(n))
			}
			e.Timestamp = time.Unix(0, int64(v))
			b = b[n:]

		case typ == protowire.BytesType && (num == fieldSender || num == fieldContentID ||
			num == fieldQueryID || num == fieldAddrs || num == fieldSignature):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrMalformedMessage, num, protowire.ParseError(n))
			}
			b = b[n:]
			if err := e.setBytesField(num, v); err != nil {
				return err
			}
			switch num {
			case fieldSender:
				haveSender = true
			case fieldContentID:
				haveID = true
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrMalformedMessage, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !haveType || !haveSender || !haveID {
		return fmt.Errorf("%w: 缺少必填字段", ErrMalformedMessage)
	}
	if !e.Type.valid() {
		return fmt.Errorf("%w: 未知消息类型 %d", ErrMalformedMessage, e.Type)
	}
	if e.Type != MessageAnnounce && e.QueryID == "" {
		return fmt.Errorf("%w: %s 缺少查询ID", ErrMalformedMessage, e.Type)
	}
	return nil
}

func (e *Envelope) setBytesField(num protowire.Number, v []byte) error {
	switch num {
	case fieldSender:
		id, err := peer.IDFromBytes(v)
		if err != nil {
			return fmt.Errorf("%w: sender: %v", ErrMalformedMessage, err)
		}
		e.Sender = id
	case fieldContentID:
		id, err := types.ContentIDFromBytes(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		e.ContentID = id
	case fieldQueryID:
		e.QueryID = string(v)
	case fieldAddrs:
		a, err := ma.NewMultiaddrBytes(v)
		if err != nil {
			return fmt.Errorf("%w: addr: %v", ErrMalformedMessage, err)
		}
		e.Addrs = append(e.Addrs, a)
	case fieldSignature:
		e.Signature = append([]byte(nil), v...)
	}
	return nil
}

// signer 签名能力（p2p.Identity 的子集）
type signer interface {
	PeerID() peer.ID
	Sign(data []byte) ([]byte, error)
}

// Sign 以本节点身份填充 Sender 并签名
func (e *Envelope) Sign(s signer) error {
	e.Sender = s.PeerID()
	e.Signature = nil
	sig, err := s.Sign(e.SigningBytes())
	if err != nil {
		return err
	}
	e.Signature = sig
	return nil
}

// Verify 验证签名，pub 为空时从 Sender 提取公钥
func (e *Envelope) Verify(pub crypto.PubKey) error {
	if len(e.Signature) == 0 {
		return fmt.Errorf("%w: 缺少签名", identity.ErrSignatureVerification)
	}
	return identity.Verify(e.Sender, pub, e.SigningBytes(), e.Signature)
}

// CheckFreshness 拒绝时间戳偏离 now 超过 maxAge 的消息
func (e *Envelope) CheckFreshness(now time.Time, maxAge time.Duration) error {
	if maxAge <= 0 {
		return nil
	}
	skew := now.Sub(e.Timestamp)
	if skew > maxAge || skew < -maxAge {
		return fmt.Errorf("%w: 偏差 %s", ErrStaleMessage, skew.Truncate(time.Second))
	}
	return nil
}
