// Package api 表单服务的 HTTP 接口
package api

import (
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/service/session"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

// Handler API 处理器
type Handler struct {
	sessions   *session.Manager
	store      *store.Store
	configPath string
	log        *zap.Logger

	cfgMu sync.RWMutex
	cfg   *config.AppConfig
}

// HandlerOptions 处理器依赖
type HandlerOptions struct {
	Sessions   *session.Manager
	Store      *store.Store
	Config     *config.AppConfig
	ConfigPath string // 空时使用 config.DefaultConfigPath
	Logger     *zap.Logger
}

// NewHandler 创建 API 处理器
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	return &Handler{
		sessions:   opts.Sessions,
		store:      opts.Store,
		configPath: opts.ConfigPath,
		log:        opts.Logger,
		cfg:        opts.Config,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 表单字段
	router.GET("/questions", h.GetQuestions)

	// 会话
	router.POST("/sessions", h.CreateSession)
	router.GET("/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.DeleteSession)
	router.PUT("/sessions/:id/answers", h.ReplaceAnswers)
	router.PATCH("/sessions/:id/answers", h.MergeAnswers)

	// 保存
	router.POST("/sessions/:id/save", h.Save)
	router.POST("/sessions/:id/save/stream", h.SaveStream)

	// Reporting 与历史
	router.POST("/reporting", h.RebuildReporting)
	router.GET("/history", h.ListHistory)
}

// workbookPath 请求未指定时使用配置中记住的路径
func (h *Handler) workbookPath(requested string) string {
	if requested != "" {
		return requested
	}
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	return h.cfg.Workbook.Path
}
