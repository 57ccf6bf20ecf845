package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/casnode/internal/api/http/types"
	"github.com/weisyn/casnode/internal/core/node"
)

// NodeHandlers 节点状态
type NodeHandlers struct {
	node *node.Node
}

// NewNodeHandlers 创建节点处理器
func NewNodeHandlers(n *node.Node) *NodeHandlers {
	return &NodeHandlers{node: n}
}

// RegisterRoutes 注册 /api/v1/node 路由
func (h *NodeHandlers) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/info", h.Info)
	group.GET("/peers", h.Peers)
}

// Info 节点概况
func (h *NodeHandlers) Info(c *gin.Context) {
	info, err := h.node.Info(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, apitypes.ErrStorageIO, err.Error(), nil)
		return
	}
	respondOK(c, http.StatusOK, info)
}

// Peers 活跃节点
func (h *NodeHandlers) Peers(c *gin.Context) {
	respondOK(c, http.StatusOK, apitypes.NewPeerViews(h.node.ActivePeers()))
}

// Health 存活检查；没有活跃节点或存储只读时报告 degraded，但仍返回 200
func (h *NodeHandlers) Health(c *gin.Context) {
	active := len(h.node.ActivePeers())
	readOnly := h.node.ReadOnly()
	status := "ok"
	if active == 0 || readOnly {
		status = "degraded"
	}
	c.JSON(http.StatusOK, apitypes.HealthResponse{
		Status:      status,
		ReadOnly:    readOnly,
		PeerID:      h.node.ID().String(),
		ActivePeers: active,
		Uptime:      time.Since(h.node.StartedAt()).Truncate(time.Second).String(),
	})
}
