package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
)

// WorkbookRequest 可选的工作簿路径
type WorkbookRequest struct {
	WorkbookPath string `json:"workbookPath"`
}

// AnswersRequest 表单答案：问题行号 -> 值
type AnswersRequest struct {
	Answers map[string]any `json:"answers"`
}

// bindWorkbook 解析可选请求体；空请求体合法
func (h *Handler) bindWorkbook(c *gin.Context) (string, bool) {
	var req WorkbookRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "请求格式错误")
			return "", false
		}
	}
	path := h.workbookPath(strings.TrimSpace(req.WorkbookPath))
	if path == "" {
		respondError(c, engine.ErrNoWorkbook)
		return "", false
	}
	return path, true
}

// GetQuestions 读取问题表生成表单字段
// GET /api/questions?workbook=...
func (h *Handler) GetQuestions(c *gin.Context) {
	path := h.workbookPath(strings.TrimSpace(c.Query("workbook")))
	if path == "" {
		respondError(c, engine.ErrNoWorkbook)
		return
	}
	questions, err := h.sessions.Questions(path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workbookPath": path, "questions": questions})
}

// CreateSession 创建会话
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	path, ok := h.bindWorkbook(c)
	if !ok {
		return
	}
	sum, err := h.sessions.Create(path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// ListSessions 会话列表
// GET /api/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.sessions.List()})
}

// GetSession 会话详情
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	detail, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceAnswers 整表提交答案
// PUT /api/sessions/:id/answers
func (h *Handler) ReplaceAnswers(c *gin.Context) {
	h.setAnswers(c, true)
}

// MergeAnswers 合并部分答案
// PATCH /api/sessions/:id/answers
func (h *Handler) MergeAnswers(c *gin.Context) {
	h.setAnswers(c, false)
}

func (h *Handler) setAnswers(c *gin.Context, replace bool) {
	var req AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	answers, err := h.sessions.SetAnswers(c.Param("id"), req.Answers, replace)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// Save 执行保存
// POST /api/sessions/:id/save
func (h *Handler) Save(c *gin.Context) {
	res, err := h.sessions.Save(c.Param("id"), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "message": res.Message()})
}

// RebuildReporting 重建 Reporting 表
// POST /api/reporting
func (h *Handler) RebuildReporting(c *gin.Context) {
	path, ok := h.bindWorkbook(c)
	if !ok {
		return
	}
	sum, err := h.sessions.Report(path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workbookPath": path, "summary": sum})
}

// ListHistory 保存历史
// GET /api/history?session=...&limit=50
func (h *Handler) ListHistory(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit 无效")
			return
		}
		limit = n
	}
	logs, err := h.sessions.History(c.Query("session"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
