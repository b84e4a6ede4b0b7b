package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
	"github.com/KKoehn92/Master-Document-Tool/internal/service/session"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// statusFor 错误到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoWorkbook), errors.Is(err, parser.ErrInvalidAnswer), errors.Is(err, parser.ErrRangeTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, workbook.ErrSheetMissing):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
