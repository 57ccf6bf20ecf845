// Package utils 通用小工具
package utils

import (
	"net/http"
	"path/filepath"
	"strings"
)

const octetStream = "application/octet-stream"

// DetectMimeType 检测上传内容的MIME类型
//
// 以文件头魔数嗅探为准；嗅探结果为通用二进制，或为纯文本而扩展名指向更具体的文本格式时，
// 采用扩展名映射。fileName 可为空。
func DetectMimeType(data []byte, fileName string) string {
	sniffed := http.DetectContentType(data)
	extType := mimeTypeByExtension(strings.ToLower(filepath.Ext(fileName)))

	switch {
	case extType == "":
		return sniffed
	case sniffed == octetStream:
		return extType
	case strings.HasPrefix(sniffed, "text/plain") && extType != "text/plain" && isTextual(extType):
		return extType + "; charset=utf-8"
	default:
		return sniffed
	}
}

func isTextual(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/javascript", "application/typescript":
		return true
	}
	return false
}

// mimeTypeByExtension 常见扩展名映射，未知返回空串
func mimeTypeByExtension(ext string) string {
	mimeMap := map[string]string{
		".pdf":  "application/pdf",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".json": "application/json",
		".xml":  "application/xml",
		".html": "text/html",
		".css":  "text/css",
		".js":   "application/javascript",
		".ts":   "application/typescript",
		".go":   "text/x-go",
		".py":   "text/x-python",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".mp3":  "audio/mpeg",
		".wav":  "audio/wav",
		".zip":  "application/zip",
		".tar":  "application/x-tar",
		".gz":   "application/gzip",
		".wasm": "application/wasm",
	}
	return mimeMap[ext]
}
