package store

import (
	"database/sql"
	"fmt"
	"time"
)

// 保存日志状态
const (
	SaveStatusProcessing = "processing"
	SaveStatusSuccess    = "success"
	SaveStatusNothingNew = "nothing_new"
	SaveStatusFailed     = "failed"
)

// SaveLog 保存日志
type SaveLog struct {
	ID           int64      `json:"id"`
	SaveID       string     `json:"saveId"`
	SessionID    string     `json:"sessionId"`
	Workbook     string     `json:"workbook"`
	Candidates   int        `json:"candidates"`
	Appended     int        `json:"appended"`
	Skipped      int        `json:"skipped"`
	InsertRow    int        `json:"insertRow"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// SaveLogResult 完成保存时写入的统计
type SaveLogResult struct {
	SaveID       string
	Candidates   int
	Appended     int
	Skipped      int
	InsertRow    int
	Status       string
	ErrorMessage string
}

// CreateSaveLog 创建保存日志，返回日志 id
func (s *Store) CreateSaveLog(saveID, sessionID, workbook string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO save_logs (save_id, session_id, workbook, status)
		VALUES (?, ?, ?, ?)
	`, saveID, sessionID, workbook, SaveStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create save log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get save log id: %w", err)
	}
	return id, nil
}

// FinishSaveLog 完成保存日志更新
func (s *Store) FinishSaveLog(id int64, r SaveLogResult) error {
	_, err := s.db.Exec(`
		UPDATE save_logs SET
			save_id = CASE WHEN ? = '' THEN save_id ELSE ? END,
			candidates = ?,
			appended = ?,
			skipped = ?,
			insert_row = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, r.SaveID, r.SaveID, r.Candidates, r.Appended, r.Skipped, r.InsertRow, r.Status, r.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update save log: %w", err)
	}
	return nil
}

// ListSaveLogs 最近的保存日志（新到旧）；sessionID 为空时不过滤
func (s *Store) ListSaveLogs(sessionID string, limit int) ([]SaveLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, save_id, session_id, workbook, candidates, appended, skipped,
		       insert_row, status, error_message, created_at, completed_at
		FROM save_logs`
	args := []any{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list save logs: %w", err)
	}
	defer rows.Close()

	var logs []SaveLog
	for rows.Next() {
		var l SaveLog
		var completed sql.NullTime
		if err := rows.Scan(&l.ID, &l.SaveID, &l.SessionID, &l.Workbook, &l.Candidates, &l.Appended,
			&l.Skipped, &l.InsertRow, &l.Status, &l.ErrorMessage, &l.CreatedAt, &completed); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountSaveLogs 按状态统计保存次数；status 为空时统计全部
func (s *Store) CountSaveLogs(status string) (int, error) {
	var n int
	var err error
	if status == "" {
		err = s.db.QueryRow("SELECT COUNT(*) FROM save_logs").Scan(&n)
	} else {
		err = s.db.QueryRow("SELECT COUNT(*) FROM save_logs WHERE status = ?", status).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count save logs: %w", err)
	}
	return n, nil
}
