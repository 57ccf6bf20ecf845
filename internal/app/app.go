package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/pkg/types"
)

// EnvConfigPath 配置文件路径环境变量
const EnvConfigPath = "CASNODE_CONFIG_PATH"

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "configs/casnode.json"

// stopTimeout 关闭全部组件的最长等待
const stopTimeout = 30 * time.Second

// resolveConfigPath 确定配置文件路径
//
// 优先级：--config > CASNODE_CONFIG_PATH > configs/casnode.json。
// 第二个返回值表示路径是否由调用方显式指定。
func resolveConfigPath(flagPath string, lookupEnv func(string) (string, bool)) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if envPath, ok := lookupEnv(EnvConfigPath); ok && envPath != "" {
		return envPath, true
	}
	return DefaultConfigPath, false
}

// loadAppConfig 读取 JSON 配置文件
//
// 显式指定的文件不存在时报错；默认路径不存在时返回 nil，全部使用默认值。
// 未出现的字段保持为 nil，由配置层区分“未设置”与“设置为零值”。
func loadAppConfig(fs afero.Fs, path string, explicit bool) (*types.AppConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	var cfg types.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &cfg, nil
}

// prepareDirectories 根据配置创建日志目录
// 存储根目录由内容存储自行创建
func prepareDirectories(fs afero.Fs, cfg *types.AppConfig) error {
	if cfg == nil || cfg.Log == nil || cfg.Log.FilePath == nil {
		return nil
	}
	switch *cfg.Log.FilePath {
	case "", "stdout", "stderr":
		return nil
	}
	dir := filepath.Dir(*cfg.Log.FilePath)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录 %s 失败: %w", dir, err)
	}
	return nil
}

// App 运行中的节点应用
type App interface {
	// Node 节点上下文
	Node() *node.Node

	// Stop 按构造逆序停止全部组件
	Stop(ctx context.Context) error

	// Wait 阻塞直到收到退出信号或 ctx 结束，然后停止应用
	Wait(ctx context.Context) error
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
	node      *node.Node
}

func (a *internalApp) Node() *node.Node {
	return a.node
}

func (a *internalApp) Stop(ctx context.Context) error {
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		fmt.Printf("\n🛑 收到信号 %v，正在优雅退出...\n", sig)
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.Stop(stopCtx)
}

// Start 加载配置、装配并启动节点
func Start(ctx context.Context, appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	if opts.appConfig == nil {
		fs := afero.NewOsFs()
		path, explicit := resolveConfigPath(opts.configFilePath, os.LookupEnv)
		cfg, err := loadAppConfig(fs, path, explicit)
		if err != nil {
			return nil, err
		}
		if cfg != nil {
			fmt.Printf("已加载配置文件: %s\n", path)
		} else {
			fmt.Printf("配置文件 %s 不存在，使用默认配置\n", path)
		}
		if err := prepareDirectories(fs, cfg); err != nil {
			return nil, err
		}
		opts.appConfig = cfg
	}

	return BootstrapApp(ctx, opts)
}
