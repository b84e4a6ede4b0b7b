package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/api"
	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
	"github.com/KKoehn92/Master-Document-Tool/internal/service/session"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	store    *store.Store
	sessions *session.Manager
	api      *api.Handler
	log      *zap.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, configPath string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	sqliteStore, err := store.New(config.DatabasePath(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eng, err := engine.New(EngineOptions(cfg, logger))
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	sessions, err := session.NewManager(eng, session.Options{
		DataDir: dataDir,
		Store:   sqliteStore,
		Logger:  logger.Named("session"),
	})
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	handler := api.NewHandler(api.HandlerOptions{
		Sessions:   sessions,
		Store:      sqliteStore,
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger.Named("api"),
	})

	s := &Server{
		router:   gin.Default(),
		store:    sqliteStore,
		sessions: sessions,
		api:      handler,
		log:      logger,
	}

	s.setupRoutes(devMode)

	return s, nil
}

// EngineOptions 由配置生成保存引擎参数
func EngineOptions(cfg *config.AppConfig, logger *zap.Logger) engine.Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	return engine.Options{
		QuestionSheet:   cfg.Workbook.QuestionSheet,
		MasterSheet:     cfg.Workbook.MasterSheet,
		ReferenceSheets: cfg.Workbook.ReferenceSheets,
		ReportingSheet:  cfg.Workbook.ReportingSheet,
		Logger:          logger.Named("engine"),
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	group := s.router.Group("/api")
	{
		s.api.RegisterRoutes(group)
	}

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	// 生产模式：使用embed的静态资源
	sub, _ := fs.Sub(staticFiles, "dist")

	s.router.GET("/favicon.svg", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	// 表单页与 fallback
	index := func(c *gin.Context) {
		data, _ := fs.ReadFile(sub, "index.html")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)
	s.router.NoRoute(index)
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}
