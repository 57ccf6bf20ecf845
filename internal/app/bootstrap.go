package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/casnode/internal/api"
	config "github.com/weisyn/casnode/internal/config"
	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/content"
	"github.com/weisyn/casnode/internal/core/infrastructure/event"
	"github.com/weisyn/casnode/internal/core/infrastructure/writegate"
	log "github.com/weisyn/casnode/internal/core/infrastructure/log"
	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/internal/core/p2p/discovery"
	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/internal/core/p2p/identity"
	"github.com/weisyn/casnode/internal/core/p2p/replication"
	configiface "github.com/weisyn/casnode/pkg/interfaces/config"
)

// startTimeout 启动全部组件的最长等待
const startTimeout = 60 * time.Second

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
	node  *node.Node
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 配置、日志、事件
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
		event.Module(),  // 3. 事件总线(依赖日志)
		writegate.Module(),
	}
}

// SetupCommunicationLayer 存储与网络
//
// 启动顺序即提供顺序：存储、身份、主机、发现、复制；关闭时逆序，
// 复制层先于主机停止，主机关闭前所有流均已注销。
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		cas.Module(),
		identity.Module(),
		host.Module(),
		discovery.Module(),
		replication.Module(),
	}
}

// SetupBusinessLayer 内容服务与节点上下文
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		content.Module(),
		node.Module(),
	}
}

// SetupApplicationLayer 对外接口
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		// 节点上下文必须被构造，发现与复制服务随之挂接生命周期
		fx.Populate(&b.node),
	}
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
	}
	return modules
}

// SetupModules 按层组装全部模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// appOptions 完整的 fx 选项
func (b *Bootstrap) appOptions() []fx.Option {
	return []fx.Option{
		fx.Options(b.SetupModules()...),
		// 禁用fx内部日志，组件日志统一走 zap
		fx.NopLogger,
	}
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(b.appOptions()...)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配应用失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(ctx context.Context, opts *options) (App, error) {
	bootstrap := NewBootstrap(opts)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(startCtx); err != nil {
		return nil, err
	}

	return &internalApp{bootstrap: bootstrap, node: bootstrap.node}, nil
}
