package content

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/p2p/replication"
	"github.com/weisyn/casnode/pkg/types"
)

// stubResolver 可编程的网络解析器
type stubResolver struct {
	store *cas.Store
	data  []byte
	err   error
	calls int
}

func (r *stubResolver) Resolve(ctx context.Context, id types.ContentID) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if _, _, err := r.store.Put(ctx, r.data); err != nil {
		return nil, err
	}
	return r.data, nil
}

func (r *stubResolver) Holders(types.ContentID) []types.Holder { return nil }

func newStore(t *testing.T) *cas.Store {
	t.Helper()
	opts := storageconfig.New(&types.UserStorageConfig{
		RootPath:     types.StringPtr("/data"),
		CacheEnabled: types.BoolPtr(false),
	}).GetOptions()
	store, err := cas.New(afero.NewMemMapFs(), opts, nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestDownload_WithLocalObject_SkipsNetwork 测试本地命中
func TestDownload_WithLocalObject_SkipsNetwork(t *testing.T) {
	// Arrange
	store := newStore(t)
	resolver := &stubResolver{store: store}
	svc := New(store, resolver, nil)
	info, created, err := svc.Upload(context.Background(), []byte("hello world"))
	require.NoError(t, err)
	require.True(t, created)

	// Act
	data, err := svc.Download(context.Background(), info.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)
	assert.Equal(t, 0, resolver.calls, "本地命中不应查询网络")
}

// TestDownload_WithRemoteObject_ResolvesAndCachesLocally 测试网络解析
func TestDownload_WithRemoteObject_ResolvesAndCachesLocally(t *testing.T) {
	store := newStore(t)
	payload := []byte("remote only")
	resolver := &stubResolver{store: store, data: payload}
	svc := New(store, resolver, nil)
	id := types.Identify(payload)

	data, err := svc.Download(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = svc.Download(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls, "第二次下载应命中本地")
}

// TestDownload_WithNetworkMiss_ReturnsNotFound 测试全网缺失
func TestDownload_WithNetworkMiss_ReturnsNotFound(t *testing.T) {
	store := newStore(t)
	resolver := &stubResolver{err: fmt.Errorf("%w: timeout", replication.ErrContentNotFound)}
	svc := New(store, resolver, nil)

	_, err := svc.Download(context.Background(), types.Identify([]byte("x")))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, replication.ErrContentNotFound)
}

// TestDownload_WithResolverFailure_PropagatesError 测试非“未找到”错误透传
func TestDownload_WithResolverFailure_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	svc := New(newStore(t), &stubResolver{err: boom}, nil)

	_, err := svc.Download(context.Background(), types.Identify([]byte("x")))

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

// TestDownload_WithoutResolver_ReturnsNotFound 测试单机模式
func TestDownload_WithoutResolver_ReturnsNotFound(t *testing.T) {
	svc := New(newStore(t), nil, nil)

	_, err := svc.Download(context.Background(), types.Identify([]byte("x")))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, svc.Holders(types.Identify(nil)))
}
