package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

// ConfigResponse 配置响应
type ConfigResponse struct {
	WorkbookPath    string   `json:"workbookPath"`
	QuestionSheet   string   `json:"questionSheet"`
	MasterSheet     string   `json:"masterSheet"`
	ReferenceSheets []string `json:"referenceSheets"`
	ReportingSheet  string   `json:"reportingSheet"`
	Port            int      `json:"port"`
	DevMode         bool     `json:"devMode"`
}

// UpdateConfigRequest 更新配置请求
type UpdateConfigRequest struct {
	WorkbookPath string `json:"workbookPath"`
}

// GetConfig 获取配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	wb := h.cfg.Workbook
	c.JSON(http.StatusOK, ConfigResponse{
		WorkbookPath:    wb.Path,
		QuestionSheet:   wb.QuestionSheet,
		MasterSheet:     wb.MasterSheet,
		ReferenceSheets: wb.ReferenceSheets,
		ReportingSheet:  wb.ReportingSheet,
		Port:            h.cfg.Server.Port,
		DevMode:         h.cfg.Server.DevMode,
	})
}

// UpdateConfig 记住新的工作簿路径
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	path := strings.TrimSpace(req.WorkbookPath)
	if path == "" {
		badRequest(c, "缺少 workbookPath")
		return
	}
	if !fileExists(path) {
		respondError(c, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist})
		return
	}

	h.cfgMu.Lock()
	err := config.RememberWorkbookPath(h.cfg, h.configPath, path)
	saved := h.cfg.Workbook.Path
	h.cfgMu.Unlock()
	if err != nil {
		h.log.Error("save config failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存配置失败"})
		return
	}

	if h.store != nil {
		if err := h.store.SetConfig(store.ConfigLastWorkbook, saved); err != nil {
			h.log.Warn("remember workbook in store failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"workbookPath": saved})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
