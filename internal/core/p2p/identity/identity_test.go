package identity

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nodeconfig "github.com/weisyn/casnode/internal/config/node"
)

// failingReader 模拟熵源故障
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

// TestLoadOrCreate_WithPersist_ReloadsSamePeerID 测试身份持久化
func TestLoadOrCreate_WithPersist_ReloadsSamePeerID(t *testing.T) {
	// Arrange
	keyFile := filepath.Join(t.TempDir(), "keys", "node.key")
	cfg := nodeconfig.IdentityConfig{KeyFile: keyFile, Persist: true}

	// Act
	first, err := LoadOrCreate(cfg, nil)
	require.NoError(t, err)
	second, err := LoadOrCreate(cfg, nil)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.PeerID(), second.PeerID(), "重启后节点标识应保持不变")
	fi, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm(), "密钥文件仅所有者可读写")
}

// TestLoadOrCreate_WithoutPersist_IsEphemeral 测试临时身份
func TestLoadOrCreate_WithoutPersist_IsEphemeral(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "node.key")
	cfg := nodeconfig.IdentityConfig{KeyFile: keyFile, Persist: false}

	a, err := LoadOrCreate(cfg, nil)
	require.NoError(t, err)
	b, err := LoadOrCreate(cfg, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.PeerID(), b.PeerID())
	_, err = os.Stat(keyFile)
	assert.True(t, os.IsNotExist(err), "未启用持久化时不应写文件")
}

// TestLoadOrCreate_WithCorruptKeyFile_ReturnsError 测试损坏的密钥文件
func TestLoadOrCreate_WithCorruptKeyFile_ReturnsError(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "node.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("not base64!"), 0o600))

	_, err := LoadOrCreate(nodeconfig.IdentityConfig{KeyFile: keyFile, Persist: true}, nil)

	assert.ErrorIs(t, err, ErrKeyFile)
}

// TestGenerate_WithFailingEntropy_ReturnsError 测试熵源故障
func TestGenerate_WithFailingEntropy_ReturnsError(t *testing.T) {
	_, err := Generate(failingReader{})

	assert.Error(t, err)
}

// TestVerify_WithValidSignature_Succeeds 测试签名验证
func TestVerify_WithValidSignature_Succeeds(t *testing.T) {
	svc, err := Generate(nil)
	require.NoError(t, err)
	msg := []byte("announce")

	sig, err := svc.Sign(msg)
	require.NoError(t, err)

	assert.NoError(t, Verify(svc.PeerID(), nil, msg, sig), "应能从节点标识提取公钥")
	assert.NoError(t, Verify(svc.PeerID(), svc.PublicKey(), msg, sig))
}

// TestVerify_WithTamperedData_ReturnsSignatureError 测试篡改检测
func TestVerify_WithTamperedData_ReturnsSignatureError(t *testing.T) {
	svc, err := Generate(nil)
	require.NoError(t, err)
	sig, err := svc.Sign([]byte("original"))
	require.NoError(t, err)

	err = Verify(svc.PeerID(), nil, []byte("tampered"), sig)

	assert.ErrorIs(t, err, ErrSignatureVerification)
}

// TestVerify_WithForeignKey_ReturnsSignatureError 测试冒充发送者
func TestVerify_WithForeignKey_ReturnsSignatureError(t *testing.T) {
	victim, err := Generate(nil)
	require.NoError(t, err)
	attacker, err := Generate(nil)
	require.NoError(t, err)
	msg := []byte("forged")
	sig, err := attacker.Sign(msg)
	require.NoError(t, err)

	err = Verify(victim.PeerID(), attacker.PublicKey(), msg, sig)

	assert.ErrorIs(t, err, ErrSignatureVerification)
}

// TestGenerate_WithDeterministicEntropy_IsReproducible 测试熵源注入
func TestGenerate_WithDeterministicEntropy_IsReproducible(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 64)

	a, err := Generate(bytes.NewReader(seed))
	require.NoError(t, err)
	b, err := Generate(bytes.NewReader(seed))
	require.NoError(t, err)

	assert.Equal(t, a.PeerID(), b.PeerID())
}
