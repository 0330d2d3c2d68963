// Package rest 提供议题、会员、投票会话和投票的 REST 接口。
package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"go.uber.org/zap"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
}

func NewHandler(services *service.Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{services: services, logger: logger}
}

// Register 在 r 上注册 /api 下的所有路由
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	agenda := api.Group("/agenda")
	agenda.GET("", h.listAgendas)
	agenda.GET("/:id", h.getAgenda)
	agenda.POST("", h.createAgenda)

	associate := api.Group("/associate")
	associate.GET("", h.listAssociates)
	associate.GET("/:cpf", h.getAssociate)
	associate.POST("", h.createAssociate)

	api.POST("/vote", h.castVote)

	voting := api.Group("/voting")
	voting.GET("", h.listSessions)
	voting.GET("/:id", h.getSession)
	voting.POST("/sessions", h.openSession)
	voting.GET("/result/:sessionId", h.getResult)
}

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// StatusFor 错误类别对应的 HTTP 状态码
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidState, apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		h.logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Message: apperr.MessageOf(err), Code: string(kind)})
}

// bind 解析 JSON 请求体，失败时直接返回 400
func (h *Handler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Wrap(apperr.KindInvalidArgument, apperr.MsgInvalidBody, err))
		return false
	}
	return true
}

// listOf 空列表序列化为 [] 而不是 null
func listOf[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
