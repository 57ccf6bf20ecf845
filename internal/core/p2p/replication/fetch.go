package replication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/weisyn/casnode/pkg/constants/protocols"
	"github.com/weisyn/casnode/pkg/types"
)

// 直连协议
const (
	FetchProtocol         protocol.ID = protocols.ProtocolFetch
	QueryResponseProtocol protocol.ID = protocols.ProtocolQueryResponse
)

// handleFetch 应答对象拉取请求
// 请求：FetchRequest(32字节ID)；应答：Found(snappy负载) | NotFound | Error
func (s *Service) handleFetch(ctx context.Context, st network.Stream) {
	defer st.Close()
	remote := st.Conn().RemotePeer()
	_ = st.SetDeadline(time.Now().Add(s.cfg.FetchTimeout))

	ft, payload, err := DecodeFrame(st)
	if err != nil {
		s.logDebugf("读取拉取请求失败 peer=%s: %v", remote, err)
		_ = st.Reset()
		return
	}
	if ft != FrameTypeFetchRequest {
		_ = EncodeFrame(st, FrameTypeError, []byte("unexpected frame type"))
		return
	}
	id, err := types.ContentIDFromBytes(payload)
	if err != nil {
		_ = EncodeFrame(st, FrameTypeError, []byte(err.Error()))
		return
	}

	data, ok, err := s.store.Get(ctx, id)
	switch {
	case err != nil:
		s.logWarnf("拉取请求读取本地对象失败 id=%s: %v", id, err)
		_ = EncodeFrame(st, FrameTypeError, []byte("storage error"))
	case !ok:
		_ = EncodeFrame(st, FrameTypeNotFound, nil)
	default:
		if err := EncodeFrame(st, FrameTypeFound, snappy.Encode(nil, data)); err != nil {
			s.logDebugf("发送对象失败 peer=%s id=%s: %v", remote, id, err)
			_ = st.Reset()
			return
		}
		s.logDebugf("已向 %s 提供对象 %s (%d bytes)", remote, id, len(data))
	}
}

// fetch 从指定节点直接拉取对象并校验哈希
//
// 拨号或流错误返回 ErrPeerUnreachable；对方没有该对象返回 ErrContentNotFound；
// 字节与标识符不符返回 ErrContentIntegrity。
func (s *Service) fetch(ctx context.Context, from peer.ID, addrs []ma.Multiaddr, id types.ContentID) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	info := peer.AddrInfo{ID: from, Addrs: addrs}
	if rec, ok := s.peers.Get(from); ok && len(info.Addrs) == 0 {
		info.Addrs = rec.Addrs
	}
	if err := s.network.EnsureConnected(ctx, info); err != nil {
		fetchTotal.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, from, err)
	}
	st, err := s.network.NewStream(ctx, from, FetchProtocol)
	if err != nil {
		fetchTotal.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, from, err)
	}
	defer st.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = st.SetDeadline(dl)
	}

	if err := EncodeFrame(st, FrameTypeFetchRequest, id[:]); err != nil {
		_ = st.Reset()
		fetchTotal.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, from, err)
	}
	_ = st.CloseWrite()

	ft, payload, err := DecodeFrame(st)
	if err != nil {
		_ = st.Reset()
		var ce *CodecError
		if errors.As(err, &ce) && ce.Type != ErrTypeIO {
			fetchTotal.WithLabelValues("malformed").Inc()
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, from, err)
		}
		fetchTotal.WithLabelValues("unreachable").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrPeerUnreachable, from, err)
	}

	switch ft {
	case FrameTypeFound:
	case FrameTypeNotFound:
		fetchTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %s 不持有 %s", ErrContentNotFound, from, id)
	case FrameTypeError:
		fetchTotal.WithLabelValues("remote_error").Inc()
		return nil, fmt.Errorf("%w: %s: %s", ErrPeerUnreachable, from, string(payload))
	default:
		fetchTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: 未知帧类型 %d", ErrMalformedMessage, ft)
	}

	n, err := snappy.DecodedLen(payload)
	if err != nil {
		fetchTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if s.maxObjectSize > 0 && int64(n) > s.maxObjectSize {
		fetchTotal.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%w: 对象 %d 字节超过上限", ErrMalformedMessage, n)
	}
	data, err := snappy.Decode(nil, payload)
	if err != nil {
		fetchTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if got := s.addresser.Identify(data); got != id {
		fetchTotal.WithLabelValues("integrity").Inc()
		return nil, fmt.Errorf("%w: 期望 %s 实际 %s (peer=%s)", ErrContentIntegrity, id, got, from)
	}
	fetchTotal.WithLabelValues("ok").Inc()
	return data, nil
}
