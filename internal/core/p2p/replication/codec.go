package replication

import (
	"encoding/binary"
	"fmt"
	"io"
)

// 帧常量与安全限制
const (
	FrameMagic   uint16 = 0xCA5E
	FrameVersion uint8  = 1
	headerSize          = 8
	// MaxPayloadSize 单帧负载上限，需容纳最大对象经 snappy 压缩后的最坏长度
	MaxPayloadSize uint32 = 96 * 1024 * 1024
)

// 帧类型
const (
	FrameTypeFetchRequest uint8 = 0x01 // 负载：32字节内容标识符
	FrameTypeFound        uint8 = 0x02 // 负载：snappy 压缩后的对象字节
	FrameTypeNotFound     uint8 = 0x03 // 无负载
	FrameTypeError        uint8 = 0x04 // 负载：错误文本
	FrameTypeEnvelope     uint8 = 0x05 // 负载：签名消息（查询应答直连）
)

// EncodeFrame 以固定头部编码一帧：magic(2)|version(1)|type(1)|len(4)|payload
func EncodeFrame(w io.Writer, frameType uint8, payload []byte) error {
	//nolint:gosec // G115: 长度已在下方校验
	if uint64(len(payload)) > uint64(MaxPayloadSize) {
		return &CodecError{Type: ErrTypeOversize, Msg: "payload too large"}
	}
	hdr := make([]byte, headerSize, headerSize+len(payload))
	binary.BigEndian.PutUint16(hdr[0:2], FrameMagic)
	hdr[2] = FrameVersion
	hdr[3] = frameType
	//nolint:gosec // G115: len() 已通过 MaxPayloadSize 检查
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	// 头部与负载一次写出，避免流上出现半帧
	if _, err := w.Write(append(hdr, payload...)); err != nil {
		return &CodecError{Type: ErrTypeIO, Msg: "frame write failed", Cause: err}
	}
	return nil
}

// DecodeFrame 解码一帧，返回类型与负载
func DecodeFrame(r io.Reader) (uint8, []byte, error) {
	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return 0, nil, &CodecError{Type: ErrTypeIO, Msg: "header read failed", Cause: err}
	}
	if binary.BigEndian.Uint16(hdr[0:2]) != FrameMagic {
		return 0, nil, &CodecError{Type: ErrTypeProtocol, Msg: "invalid magic"}
	}
	if hdr[2] != FrameVersion {
		return 0, nil, &CodecError{Type: ErrTypeProtocol, Msg: "unsupported version"}
	}
	ft := hdr[3]
	ln := binary.BigEndian.Uint32(hdr[4:8])
	if ln > MaxPayloadSize {
		return 0, nil, &CodecError{Type: ErrTypeOversize, Msg: "payload too large"}
	}
	var payload []byte
	if ln > 0 {
		payload = make([]byte, ln)
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, &CodecError{Type: ErrTypeIO, Msg: "payload read failed", Cause: err, Retryable: true}
		}
	}
	return ft, payload, nil
}

// CodecErrorType 编解码器错误类型
type CodecErrorType int

const (
	// ErrTypeIO I/O错误，通常可重试
	ErrTypeIO CodecErrorType = iota
	// ErrTypeProtocol 协议错误，不可重试
	ErrTypeProtocol
	// ErrTypeOversize 超大帧错误，不可重试
	ErrTypeOversize
)

// CodecError 分类错误结构
type CodecError struct {
	Type      CodecErrorType
	Msg       string
	Cause     error
	Retryable bool
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *CodecError) Unwrap() error { return e.Cause }

// IsRetryable 判断错误是否可重试
func (e *CodecError) IsRetryable() bool {
	return e.Retryable || e.Type == ErrTypeIO
}
