package node

import (
	"go.uber.org/fx"

	"github.com/weisyn/casnode/internal/core/cas"
	"github.com/weisyn/casnode/internal/core/content"
	"github.com/weisyn/casnode/internal/core/p2p/host"
	"github.com/weisyn/casnode/internal/core/p2p/replication"
	"github.com/weisyn/casnode/pkg/interfaces/config"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/casnode/pkg/interfaces/p2p"
)

// ModuleInput 节点上下文依赖
type ModuleInput struct {
	fx.In

	Provider    config.Provider
	Identity    p2p.Identity
	Host        *host.Service
	Store       *cas.Store
	Peers       p2p.PeerDirectory
	Replication *replication.Service
	Content     *content.Service
	WriteGate   writegate.WriteGate `optional:"true"`
	Logger      log.Logger          `optional:"true"`
}

// Module 返回节点上下文模块
func Module() fx.Option {
	return fx.Module("node",
		fx.Provide(ProvideNode),
	)
}

// ProvideNode 构造节点上下文
func ProvideNode(input ModuleInput) *Node {
	n := New(Node{
		Identity:    input.Identity,
		Host:        input.Host,
		Store:       input.Store,
		Peers:       input.Peers,
		Replication: input.Replication,
		Content:     input.Content,
		Gate:        input.WriteGate,
		Chain:       input.Provider.GetChain(),
	})
	if input.Logger != nil {
		input.Logger.With("module", "node").Infof("节点上下文已创建 peer=%s", n.ID())
	}
	return n
}
