package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	WorkbookPath   string `json:"workbookPath"`   // 记住的工作簿路径
	WorkbookExists bool   `json:"workbookExists"` // 路径是否存在
	Sessions       int    `json:"sessions"`       // 打开的会话数
	Saves          int    `json:"saves"`          // 保存总次数
	FailedSaves    int    `json:"failedSaves"`    // 失败次数
	LastSaveID     string `json:"lastSaveId"`     // 最近一次成功保存
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	path := h.workbookPath("")
	resp := StatusResponse{
		WorkbookPath:   path,
		WorkbookExists: path != "" && fileExists(path),
		Sessions:       len(h.sessions.List()),
	}

	if h.store != nil {
		if n, err := h.store.CountSaveLogs(""); err == nil {
			resp.Saves = n
		}
		if n, err := h.store.CountSaveLogs(store.SaveStatusFailed); err == nil {
			resp.FailedSaves = n
		}
		if id, err := h.store.GetConfig(store.ConfigLastSaveID); err == nil {
			resp.LastSaveID = id
		}
	}

	c.JSON(http.StatusOK, resp)
}
