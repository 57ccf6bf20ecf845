package cas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/casnode/pkg/types"
)

// TestIdentify_WithKnownVector_ReturnsSHA256 测试已知向量
func TestIdentify_WithKnownVector_ReturnsSHA256(t *testing.T) {
	id := SHA256Addresser{}.Identify([]byte("hello world"))

	assert.Equal(t, helloWorldID, id.String())
	assert.Len(t, id.String(), 64)
}

// TestIdentify_WithDifferentPayloads_ReturnsDifferentIDs 测试确定性
func TestIdentify_WithDifferentPayloads_ReturnsDifferentIDs(t *testing.T) {
	a := SHA256Addresser{}.Identify([]byte("a"))
	b := SHA256Addresser{}.Identify([]byte("b"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, SHA256Addresser{}.Identify([]byte("a")), "相同字节必须得到相同标识符")
}

// TestParseContentID_WithUppercase_Normalises 测试文本形式规范化
func TestParseContentID_WithUppercase_Normalises(t *testing.T) {
	upper := "B94D27B9934D3E08A52E52D7DA7DABFAC484EFE37A5380EE9088F7ACE2EFCDE9"

	id, err := types.ParseContentID(upper)

	require.NoError(t, err)
	assert.Equal(t, helloWorldID, id.String())
}

// TestParseContentID_WithBadInput_ReturnsError 测试非法文本
func TestParseContentID_WithBadInput_ReturnsError(t *testing.T) {
	for _, in := range []string{"", "abc", helloWorldID + "00", "z" + helloWorldID[1:]} {
		_, err := types.ParseContentID(in)
		assert.ErrorIs(t, err, types.ErrInvalidContentID, "输入 %q 应被拒绝", in)
	}
}
