// Package api 组装 HTTP 服务：REST 接口、GraphQL 端点、健康检查和指标。
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvdashuaibi/agendavote/internal/api/graph"
	"github.com/lvdashuaibi/agendavote/internal/api/rest"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"go.uber.org/zap"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer 创建HTTP服务，graphqlPath 为空时使用 /graphql
func NewServer(services *service.Services, store Pinger, m *metrics.Metrics, graphqlPath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	rest.NewHandler(services, logger).Register(engine)

	gql := graph.NewGraphQLServer(services, graphqlPath, logger)
	engine.POST(gql.Path(), gin.WrapH(gql.Handler()))
	engine.GET("/", gin.WrapH(gql.PlaygroundHandler()))

	return &Server{engine: engine, logger: logger}
}

// Handler 返回路由，测试中直接使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听端口并阻塞，Shutdown 后返回 nil
func (s *Server) Start(port int) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("HTTP服务已启动", zap.Int("port", port))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestLogger 使用 zap 记录每个请求
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("请求完成", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Info("请求完成", fields...)
		default:
			logger.Debug("请求完成", fields...)
		}
	}
}
