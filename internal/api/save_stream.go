package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
)

type saveProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// SaveStream 执行保存（SSE 进度）
// POST /api/sessions/:id/save/stream
func (h *Handler) SaveStream(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.sessions.Get(id); err != nil {
		respondError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event saveProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(saveProgressEvent{
		Type:      "start",
		Message:   "开始保存",
		Data:      map[string]any{"sessionId": id},
		Timestamp: time.Now(),
	})

	lastPercent := -1
	progressFn := func(p engine.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(saveProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: time.Now(),
		})
	}

	res, err := h.sessions.Save(id, progressFn)
	if err != nil {
		send(saveProgressEvent{
			Type:      "error",
			Message:   err.Error(),
			Data:      map[string]any{"status": statusFor(err)},
			Timestamp: time.Now(),
		})
		return
	}

	send(saveProgressEvent{
		Type:    "done",
		Message: res.Message(),
		Data: map[string]any{
			"percent": 100,
			"result":  res,
		},
		Timestamp: time.Now(),
	})
}
