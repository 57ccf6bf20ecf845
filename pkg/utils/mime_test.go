package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetectMimeType_WithVariousInputs_PicksMostSpecific 测试类型判定规则
func TestDetectMimeType_WithVariousInputs_PicksMostSpecific(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	binary := []byte{0x00, 0x01, 0x02, 0xff}

	cases := []struct {
		name     string
		data     []byte
		fileName string
		want     string
	}{
		{"纯文本无文件名", []byte("hello world"), "", "text/plain; charset=utf-8"},
		{"txt 保持嗅探结果", []byte("hello world"), "greeting.txt", "text/plain; charset=utf-8"},
		{"markdown 细分", []byte("# title"), "README.md", "text/markdown; charset=utf-8"},
		{"魔数优先于扩展名", png, "photo.jpg", "image/png"},
		{"未知二进制用扩展名", binary, "archive.tar", "application/x-tar"},
		{"未知二进制未知扩展名", binary, "blob.bin", "application/octet-stream"},
		{"文本内容不信任二进制扩展名", []byte("hello"), "fake.png", "text/plain; charset=utf-8"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectMimeType(tc.data, tc.fileName))
		})
	}
}
