package cas

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	storageconfig "github.com/weisyn/casnode/internal/config/storage"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
	"github.com/weisyn/casnode/pkg/types"
)

const (
	// objectExt 对象文件扩展名
	objectExt = ".dat"
	// tempPrefix 写入中的临时文件前缀，List 与启动清理据此识别
	tempPrefix = ".tmp-"
)

// Store 本地内容寻址存储
//
// 🎯 **写入语义**：
// - 相同标识符的并发 Put 通过 singleflight 合并为一次物理写入
// - 先写临时文件并 fsync，再原子 rename 为最终文件名
// - 最终文件已存在时跳过写入（幂等），返回 created=false
//
// 读取端只会看到完整对象：部分写入永远停留在临时文件中。
type Store struct {
	fs        afero.Fs
	root      string
	options   *storageconfig.StorageOptions
	addresser storage.Addresser
	cache     *objectCache
	gate      writegate.WriteGate
	publisher event.Publisher
	logger    log.Logger

	group  singleflight.Group
	closed atomic.Bool
}

var _ storage.ContentStore = (*Store)(nil)

// putResult singleflight 共享的写入结果
type putResult struct {
	info    types.ObjectInfo
	created bool
}

// New 创建内容存储并确保根目录存在
//
// fs 为空时使用操作系统文件系统；addresser 为空时使用 SHA-256。
// 启动时清理上次异常退出遗留的临时文件。
func New(fs afero.Fs, options *storageconfig.StorageOptions, addresser storage.Addresser, publisher event.Publisher, logger log.Logger) (*Store, error) {
	if options == nil {
		options = storageconfig.New(nil).GetOptions()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if addresser == nil {
		addresser = SHA256Addresser{}
	}

	root := filepath.Clean(options.RootPath)
	if exists, _ := afero.DirExists(fs, root); !exists {
		if err := fs.MkdirAll(root, options.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("%w: 创建存储根目录 %s: %v", ErrStorageIO, root, err)
		}
	}

	s := &Store{
		fs:        fs,
		root:      root,
		options:   options,
		addresser: addresser,
		publisher: publisher,
		logger:    logger,
	}

	if options.Cache.Enabled {
		cache, err := newObjectCache(options.Cache)
		if err != nil {
			// 缓存只是加速层，创建失败不影响存储可用性
			s.logWarnf("对象缓存不可用，直接读盘: %v", err)
		} else {
			s.cache = cache
		}
	}

	s.removeStaleTempFiles()
	return s, nil
}

// Root 返回对象文件根目录
func (s *Store) Root() string {
	return s.root
}

// objectPath 对象最终路径 <root>/<hex>.dat
func (s *Store) objectPath(id types.ContentID) string {
	return filepath.Join(s.root, id.String()+objectExt)
}

// SetWriteGate 设置写入门闸，须在首次 Put 之前调用
func (s *Store) SetWriteGate(gate writegate.WriteGate) {
	s.gate = gate
}

// Put 计算标识符并持久化负载
func (s *Store) Put(ctx context.Context, payload []byte) (types.ObjectInfo, bool, error) {
	if s.closed.Load() {
		return types.ObjectInfo{}, false, ErrStoreClosed
	}
	if s.gate != nil {
		if err := s.gate.AssertWriteAllowed("cas.put"); err != nil {
			putTotal.WithLabelValues("error").Inc()
			return types.ObjectInfo{}, false, err
		}
	}
	if limit := s.options.MaxObjectSize; limit > 0 && int64(len(payload)) > limit {
		putTotal.WithLabelValues("error").Inc()
		return types.ObjectInfo{}, false, fmt.Errorf("%w: %d > %d 字节", ErrObjectTooLarge, len(payload), limit)
	}
	if err := ctx.Err(); err != nil {
		return types.ObjectInfo{}, false, err
	}

	id := s.addresser.Identify(payload)

	// 并发的同内容写入共享同一次落盘，只有执行写入的调用方报告 created
	leader := false
	v, err, _ := s.group.Do(id.String(), func() (interface{}, error) {
		leader = true
		return s.persist(ctx, id, payload)
	})
	if err != nil {
		putTotal.WithLabelValues("error").Inc()
		return types.ObjectInfo{}, false, err
	}

	res := v.(putResult)
	res.created = res.created && leader
	if res.created {
		putTotal.WithLabelValues("created").Inc()
	} else {
		putTotal.WithLabelValues("duplicate").Inc()
	}
	return res.info, res.created, nil
}

// persist 实际写入，仅在 singleflight 内调用
func (s *Store) persist(ctx context.Context, id types.ContentID, payload []byte) (putResult, error) {
	path := s.objectPath(id)

	if fi, err := s.fs.Stat(path); err == nil {
		return putResult{info: objectInfo(id, fi)}, nil
	} else if !os.IsNotExist(err) {
		return putResult{}, fmt.Errorf("%w: 检查对象 %s: %v", ErrStorageIO, id, err)
	}

	start := time.Now()
	if err := s.writeAtomic(path, id, payload); err != nil {
		s.logErrorf("写入对象失败 id=%s: %v", id, err)
		return putResult{}, err
	}
	putDuration.Observe(time.Since(start).Seconds())
	bytesWritten.Add(float64(len(payload)))

	fi, err := s.fs.Stat(path)
	if err != nil {
		return putResult{}, fmt.Errorf("%w: 读取新对象元数据 %s: %v", ErrStorageIO, id, err)
	}
	info := objectInfo(id, fi)

	if s.cache != nil {
		s.cache.set(id, payload)
	}
	s.logDebugf("对象已写入 id=%s size=%d", id, info.Size)

	event.PublishWithContext(s.publisher, ctx, event.EventTypeContentStored, &types.ContentStoredEvent{Object: info})
	return putResult{info: info, created: true}, nil
}

// writeAtomic 临时文件 → fsync → rename → 目录 fsync
func (s *Store) writeAtomic(path string, id types.ContentID, payload []byte) (err error) {
	tmp, err := afero.TempFile(s.fs, s.root, tempPrefix+id.String()+"-*")
	if err != nil {
		return fmt.Errorf("%w: 创建临时文件: %v", ErrStorageIO, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		s.checkDiskFull(err)
		return fmt.Errorf("%w: 写入临时文件: %v", ErrStorageIO, err)
	}
	if err = tmp.Sync(); err != nil {
		s.checkDiskFull(err)
		return fmt.Errorf("%w: fsync 临时文件: %v", ErrStorageIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: 关闭临时文件: %v", ErrStorageIO, err)
	}
	if err = s.fs.Chmod(tmpName, s.options.FilePermissions); err != nil {
		return fmt.Errorf("%w: 设置文件权限: %v", ErrStorageIO, err)
	}
	if err = s.fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: 重命名对象文件: %v", ErrStorageIO, err)
	}

	s.syncDir()
	return nil
}

// checkDiskFull 磁盘写满时切换为只读，避免后续写入反复失败
// 需人工清理空间后重启节点恢复写入
func (s *Store) checkDiskFull(err error) {
	if s.gate == nil || !errors.Is(err, syscall.ENOSPC) {
		return
	}
	if !s.gate.IsReadOnly() {
		s.logErrorf("磁盘空间不足，存储切换为只读: %v", err)
	}
	s.gate.EnterReadOnly("磁盘空间不足")
}

// syncDir 持久化目录项，失败仅记录
func (s *Store) syncDir() {
	dir, err := s.fs.Open(s.root)
	if err != nil {
		return
	}
	defer dir.Close()
	if err := dir.Sync(); err != nil {
		s.logDebugf("目录 fsync 失败（忽略）: %v", err)
	}
}

// Get 读取负载，不存在时返回 (nil, false, nil)
func (s *Store) Get(ctx context.Context, id types.ContentID) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if data, ok := s.cache.get(id); ok {
			getTotal.WithLabelValues("cache_hit").Inc()
			return data, true, nil
		}
	}

	data, err := afero.ReadFile(s.fs, s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			getTotal.WithLabelValues("miss").Inc()
			return nil, false, nil
		}
		getTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("%w: 读取对象 %s: %v", ErrStorageIO, id, err)
	}

	getTotal.WithLabelValues("hit").Inc()
	if s.cache != nil {
		s.cache.set(id, data)
	}
	return data, true, nil
}

// Has 仅检查存在性
func (s *Store) Has(ctx context.Context, id types.ContentID) (bool, error) {
	_, ok, err := s.Stat(ctx, id)
	return ok, err
}

// Stat 获取对象簿记信息
func (s *Store) Stat(ctx context.Context, id types.ContentID) (types.ObjectInfo, bool, error) {
	if s.closed.Load() {
		return types.ObjectInfo{}, false, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return types.ObjectInfo{}, false, err
	}

	fi, err := s.fs.Stat(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return types.ObjectInfo{}, false, nil
		}
		return types.ObjectInfo{}, false, fmt.Errorf("%w: 检查对象 %s: %v", ErrStorageIO, id, err)
	}
	return objectInfo(id, fi), true, nil
}

// List 列出所有已存储对象，按标识符升序，分页结果因此稳定
//
// 只接受主干为规范小写标识符的 .dat 文件，其余文件忽略。
func (s *Store) List(ctx context.Context) ([]types.ObjectInfo, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: 列出存储目录: %v", ErrStorageIO, err)
	}

	objects := make([]types.ObjectInfo, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), objectExt) {
			continue
		}
		stem := strings.TrimSuffix(fi.Name(), objectExt)
		id, err := types.ParseContentID(stem)
		if err != nil || id.String() != stem {
			continue
		}
		objects = append(objects, objectInfo(id, fi))
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].ID.String() < objects[j].ID.String()
	})
	return objects, nil
}

// Close 关闭存储，之后的操作返回 ErrStoreClosed
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.cache != nil {
		return s.cache.close()
	}
	return nil
}

// removeStaleTempFiles 清理异常退出遗留的临时文件
func (s *Store) removeStaleTempFiles() {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return
	}
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasPrefix(fi.Name(), tempPrefix) {
			continue
		}
		if err := s.fs.Remove(filepath.Join(s.root, fi.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logWarnf("清理临时文件失败 %s: %v", fi.Name(), err)
			continue
		}
		s.logInfof("已清理遗留临时文件: %s", fi.Name())
	}
}

func objectInfo(id types.ContentID, fi os.FileInfo) types.ObjectInfo {
	return types.ObjectInfo{
		ID:        id,
		Size:      fi.Size(),
		CreatedAt: fi.ModTime().UTC(),
	}
}

func (s *Store) logDebugf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debugf(format, args...)
	}
}

func (s *Store) logInfof(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Infof(format, args...)
	}
}

func (s *Store) logWarnf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warnf(format, args...)
	}
}

func (s *Store) logErrorf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Errorf(format, args...)
	}
}
