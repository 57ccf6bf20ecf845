package replication

import (
	"errors"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/pkg/types"
)

func signedQuery(t *testing.T, id *identity.Service) *Envelope {
	t.Helper()
	env := &Envelope{
		Type:      MessageQuery,
		ContentID: types.Identify([]byte("hello world")),
		QueryID:   "q-1",
		Addrs:     []ma.Multiaddr{ma.StringCast("/ip4/127.0.0.1/tcp/4000")},
		Timestamp: time.Unix(1700000000, 123456789),
	}
	require.NoError(t, env.Sign(id))
	return env
}

// TestEnvelope_WithSignedQuery_RoundTripsLosslessly 测试编解码无损
func TestEnvelope_WithSignedQuery_RoundTripsLosslessly(t *testing.T) {
	// Arrange
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	env := signedQuery(t, id)

	// Act
	var decoded Envelope
	err = decoded.Unmarshal(env.Marshal())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, env.Type, decoded.Type)
	assert.Equal(t, id.PeerID(), decoded.Sender)
	assert.Equal(t, env.ContentID, decoded.ContentID)
	assert.Equal(t, env.QueryID, decoded.QueryID)
	assert.True(t, env.Timestamp.Equal(decoded.Timestamp), "时间戳应精确到纳秒")
	require.Len(t, decoded.Addrs, 1)
	assert.True(t, env.Addrs[0].Equal(decoded.Addrs[0]))
	assert.Equal(t, env.Signature, decoded.Signature)
	assert.Equal(t, env.Marshal(), decoded.Marshal(), "再次编码应得到相同字节")
	assert.NoError(t, decoded.Verify(nil), "解码后的消息应验签通过")
}

// TestEnvelope_WithTamperedField_FailsVerification 测试篡改检测
func TestEnvelope_WithTamperedField_FailsVerification(t *testing.T) {
	id, err := identity.Generate(nil)
	require.NoError(t, err)

	cases := map[string]func(e *Envelope){
		"content id": func(e *Envelope) { e.ContentID[0] ^= 0xff },
		"query id":   func(e *Envelope) { e.QueryID = "q-2" },
		"timestamp":  func(e *Envelope) { e.Timestamp = e.Timestamp.Add(time.Second) },
		"type":       func(e *Envelope) { e.Type = MessageAnnounce },
		"addrs":      func(e *Envelope) { e.Addrs = nil },
	}
	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			env := signedQuery(t, id)
			tamper(env)
			err := env.Verify(nil)
			assert.True(t, errors.Is(err, identity.ErrSignatureVerification), "篡改后应验签失败: %v", err)
		})
	}
}

// TestEnvelope_WithForgedSender_FailsVerification 测试冒用发送者
func TestEnvelope_WithForgedSender_FailsVerification(t *testing.T) {
	alice, err := identity.Generate(nil)
	require.NoError(t, err)
	mallory, err := identity.Generate(nil)
	require.NoError(t, err)

	env := signedQuery(t, mallory)
	env.Sender = alice.PeerID()

	assert.ErrorIs(t, env.Verify(nil), identity.ErrSignatureVerification)
}

// TestEnvelope_WithoutSignature_FailsVerification 测试缺少签名
func TestEnvelope_WithoutSignature_FailsVerification(t *testing.T) {
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	env := signedQuery(t, id)
	env.Signature = nil

	assert.ErrorIs(t, env.Verify(nil), identity.ErrSignatureVerification)
}

// TestUnmarshal_WithUnknownField_SkipsIt 测试未知字段兼容
func TestUnmarshal_WithUnknownField_SkipsIt(t *testing.T) {
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	env := signedQuery(t, id)
	raw := env.Marshal()
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendString(raw, "future")

	var decoded Envelope
	require.NoError(t, decoded.Unmarshal(raw))
	assert.NoError(t, decoded.Verify(nil))
}

// TestUnmarshal_WithBadInput_ReturnsMalformed 测试非法输入
func TestUnmarshal_WithBadInput_ReturnsMalformed(t *testing.T) {
	id, err := identity.Generate(nil)
	require.NoError(t, err)
	valid := signedQuery(t, id).Marshal()

	noQueryID := &Envelope{Type: MessageQuery, ContentID: types.Identify(nil), Timestamp: time.Now()}
	require.NoError(t, noQueryID.Sign(id))

	badType := &Envelope{Type: MessageType(9), ContentID: types.Identify(nil), Timestamp: time.Now()}
	require.NoError(t, badType.Sign(id))

	inputs := map[string][]byte{
		"empty":       nil,
		"truncated":   valid[:len(valid)-3],
		"garbage":     []byte{0xff, 0xff, 0xff},
		"no query id": noQueryID.Marshal(),
		"bad type":    badType.Marshal(),
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var e Envelope
			assert.ErrorIs(t, e.Unmarshal(raw), ErrMalformedMessage)
		})
	}
}

// TestCheckFreshness_WithOldTimestamp_ReturnsStale 测试时间窗口
func TestCheckFreshness_WithOldTimestamp_ReturnsStale(t *testing.T) {
	now := time.Now()
	env := &Envelope{Timestamp: now.Add(-10 * time.Minute)}

	assert.ErrorIs(t, env.CheckFreshness(now, 5*time.Minute), ErrStaleMessage)
	assert.NoError(t, env.CheckFreshness(now, 0), "窗口为0表示不检查")

	env.Timestamp = now.Add(10 * time.Minute)
	assert.ErrorIs(t, env.CheckFreshness(now, 5*time.Minute), ErrStaleMessage, "未来时间同样拒绝")

	env.Timestamp = now.Add(-time.Minute)
	assert.NoError(t, env.CheckFreshness(now, 5*time.Minute))
}
