package cas

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/casnode/pkg/interfaces/storage"
)

// ModuleInput 内容存储模块依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger          `optional:"true"`
	Publisher event.Publisher     `optional:"true"`
	Fs        afero.Fs            `optional:"true"` // 测试时注入内存文件系统
	WriteGate writegate.WriteGate `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 内容存储模块输出
type ModuleOutput struct {
	fx.Out

	Store        *Store
	ContentStore storage.ContentStore
	Addresser    storage.Addresser
}

// Module 返回内容存储模块
func Module() fx.Option {
	return fx.Module("cas",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建内容存储
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "cas")
	}

	addresser := SHA256Addresser{}
	store, err := New(input.Fs, input.Provider.GetStorage(), addresser, input.Publisher, logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("初始化内容存储失败: %w", err)
	}
	if input.WriteGate != nil {
		store.SetWriteGate(input.WriteGate)
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			objects, err := store.List(ctx)
			if err != nil {
				return err
			}
			if logger != nil {
				logger.Infof("内容存储就绪: root=%s objects=%d", store.Root(), len(objects))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})

	return ModuleOutput{
		Store:        store,
		ContentStore: store,
		Addresser:    addresser,
	}, nil
}
