// Package content 编排上传与下载
//
// 上传直接写入本地存储；下载先查本地，未命中时交给网络解析器，
// 解析器负责校验并落盘，这里只负责把结果和“未找到”语义交给边界层。
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/weisyn/casnode/internal/core/p2p/replication"
	logiface "github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
	"github.com/weisyn/casnode/pkg/types"
)

// Service 内容服务
type Service struct {
	store    storage.ContentStore
	resolver p2p.Resolver // 为空时只查本地
	logger   logiface.Logger
}

// New 创建内容服务
func New(store storage.ContentStore, resolver p2p.Resolver, logger logiface.Logger) *Service {
	return &Service{store: store, resolver: resolver, logger: logger}
}

// Upload 持久化负载，返回对象信息与是否新建
func (s *Service) Upload(ctx context.Context, payload []byte) (types.ObjectInfo, bool, error) {
	info, created, err := s.store.Put(ctx, payload)
	if err != nil {
		return types.ObjectInfo{}, false, err
	}
	if s.logger != nil {
		s.logger.Infof("上传完成 id=%s size=%d created=%t", info.ID, info.Size, created)
	}
	return info, created, nil
}

// Download 读取内容，本地未命中时经网络解析
// 两处都没有时返回 ErrNotFound（同时满足 errors.Is(err, replication.ErrContentNotFound)）
func (s *Service) Download(ctx context.Context, id types.ContentID) ([]byte, error) {
	data, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return data, nil
	}
	if s.resolver == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	data, err = s.resolver.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, replication.ErrContentNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	return data, nil
}

// Stat 本地对象信息
func (s *Service) Stat(ctx context.Context, id types.ContentID) (types.ObjectInfo, bool, error) {
	return s.store.Stat(ctx, id)
}

// List 本地全部对象
func (s *Service) List(ctx context.Context) ([]types.ObjectInfo, error) {
	return s.store.List(ctx)
}

// Holders 已知的网络持有者
func (s *Service) Holders(id types.ContentID) []types.Holder {
	if s.resolver == nil {
		return nil
	}
	return s.resolver.Holders(id)
}
