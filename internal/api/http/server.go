// Package http 节点 HTTP API
//
// 路由：
//
//	POST /api/v1/content            上传（原始请求体或 multipart file）
//	GET  /api/v1/content            列出本地对象
//	GET  /api/v1/content/:id        下载（本地未命中时经网络解析）
//	HEAD /api/v1/content/:id        本地存在性
//	GET  /api/v1/content/:id/holders 已知网络持有者
//	GET  /api/v1/node/info          节点概况
//	GET  /api/v1/node/peers         活跃节点
//	GET  /api/v1/events             websocket 事件流
//	GET  /health, /metrics
//
// 兼容路由 /upload、/download/:id、/files 与对应的 v1 路由行为一致。
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/casnode/internal/api/http/handlers"
	"github.com/weisyn/casnode/internal/api/http/middleware"
	"github.com/weisyn/casnode/internal/api/websocket"
	apiconfig "github.com/weisyn/casnode/internal/config/api"
	"github.com/weisyn/casnode/internal/core/node"
	"github.com/weisyn/casnode/pkg/interfaces/infrastructure/log"
)

// Server HTTP服务器
type Server struct {
	cfg        apiconfig.HTTPConfig
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	hub        *websocket.Hub
	logger     log.Logger
	serveErr   chan error
}

// NewServer 创建服务器并注册路由
// hub 为空或配置关闭事件流时不注册 /api/v1/events
func NewServer(cfg apiconfig.HTTPConfig, n *node.Node, maxObjectSize int64, hub *websocket.Hub, logger log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.NewRateLimit(cfg.ReadRateLimit, cfg.WriteRateLimit).Middleware(),
	)
	if cfg.EnableMetrics {
		router.Use(middleware.Metrics())
	}
	if maxObjectSize > 0 {
		// multipart 解析在内存中最多保留一个对象，超出部分落临时文件
		router.MaxMultipartMemory = maxObjectSize
	}

	s := &Server{
		cfg:      cfg,
		router:   router,
		hub:      hub,
		logger:   logger,
		serveErr: make(chan error, 1),
	}
	s.setupRoutes(n, maxObjectSize)
	return s
}

func (s *Server) setupRoutes(n *node.Node, maxObjectSize int64) {
	contentHandlers := handlers.NewContentHandlers(n.Content, maxObjectSize, s.logger)
	nodeHandlers := handlers.NewNodeHandlers(n)

	v1 := s.router.Group("/api/v1")
	contentHandlers.RegisterRoutes(v1.Group("/content"))
	nodeHandlers.RegisterRoutes(v1.Group("/node"))
	if s.cfg.EnableEvents && s.hub != nil {
		v1.GET("/events", s.hub.ServeWS)
	}

	s.router.POST("/upload", contentHandlers.Upload)
	s.router.GET("/download/:id", contentHandlers.Download)
	s.router.GET("/files", contentHandlers.List)

	s.router.GET("/health", nodeHandlers.Health)
	if s.cfg.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// Handler 路由处理器（测试用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 监听并在后台提供服务
// 监听失败同步返回，端口被占用时不自动漂移
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("HTTP 监听 %s 失败: %w", s.cfg.Address, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.Errorf("HTTP 服务异常退出: %v", err)
			}
			s.serveErr <- err
		}
	}()

	if s.logger != nil {
		s.logger.Infof("HTTP API 已启动: http://%s/api/v1/", ln.Addr())
	}
	return nil
}

// Stop 优雅关闭，等待进行中的请求（受 ShutdownTimeout 与 ctx 限时）
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP 服务关闭失败: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("HTTP 服务已关闭")
	}
	return nil
}
