package session

import (
	"time"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

// Summary 会话概要（用于列表）
type Summary struct {
	SessionID    string    `json:"sessionId"`
	WorkbookPath string    `json:"workbookPath"`
	AnswerCount  int       `json:"answerCount"`
	SaveCount    int       `json:"saveCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSavedAt  time.Time `json:"lastSavedAt"`
}

// Detail 会话详情
type Detail struct {
	Summary   Summary           `json:"session"`
	Questions []model.Question  `json:"questions"`
	Answers   model.AnswerMap   `json:"answers"`
	LastSave  *model.SaveResult `json:"lastSave,omitempty"`
}

// sessionState 会话草稿文件：data/sessions/{sessionId}.json
type sessionState struct {
	SchemaVersion int               `json:"schemaVersion"`
	SessionID     string            `json:"sessionId"`
	WorkbookPath  string            `json:"workbookPath"`
	Answers       model.AnswerMap   `json:"answers"`
	SaveCount     int               `json:"saveCount"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	LastSavedAt   time.Time         `json:"lastSavedAt"`
	LastSave      *model.SaveResult `json:"lastSave,omitempty"`
}
