package http

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/internal/api/websocket"
	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

// ModuleInput HTTP 模块依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Node      *node.Node
	EventBus  event.EventBus `optional:"true"`
	Logger    log.Logger     `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Module 返回HTTP API模块
func Module() fx.Option {
	return fx.Module("api.http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 创建HTTP服务器与事件推送中心并挂接生命周期
// HTTP 关闭时返回 nil 服务器，调用方需判空
func ProvideServer(input ModuleInput) *Server {
	cfg := input.Provider.GetAPI().HTTP
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "api.http")
	}
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("HTTP API 已在配置中关闭")
		}
		return nil
	}

	var hub *websocket.Hub
	if cfg.EnableEvents {
		hub = websocket.NewHub(input.EventBus, cfg.EventQueueSize, logger)
		input.Lifecycle.Append(fx.StartStopHook(hub.Start, hub.Stop))
	}

	server := NewServer(cfg, input.Node, input.Provider.GetStorage().MaxObjectSize, hub, logger)
	input.Lifecycle.Append(fx.StartStopHook(server.Start, server.Stop))
	return server
}
