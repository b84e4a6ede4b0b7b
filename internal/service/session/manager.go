package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// ErrNotFound 会话不存在
var ErrNotFound = errors.New("session not found")

const (
	schemaVersion = 1
	backupKeep    = 10
)

// Options 会话管理器配置
type Options struct {
	DataDir string       // 草稿与备份目录
	Store   *store.Store // 可为 nil，此时不记录保存日志
	Logger  *zap.Logger
}

// session 单个表单会话；mu 保护 state
type session struct {
	mu        sync.Mutex
	state     sessionState
	questions []model.Question
}

// Manager 会话管理器：每个会话独立持有答案草稿，保存时按工作簿串行化
type Manager struct {
	engine  *engine.Engine
	store   *store.Store
	dataDir string
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewManager 创建会话管理器，并加载 data/sessions 下已有的草稿
func NewManager(eng *engine.Engine, opts Options) (*Manager, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if err := requireNonEmptyString(opts.DataDir, "dataDir is required"); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Manager{
		engine:   eng,
		store:    opts.Store,
		dataDir:  opts.DataDir,
		log:      opts.Logger,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: map[string]*session{},
		locks:    map[string]*sync.Mutex{},
	}
	if err := m.loadSessions(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) sessionsDir() string {
	return filepath.Join(m.dataDir, "sessions")
}

func (m *Manager) statePath(id string) string {
	return filepath.Join(m.sessionsDir(), id+".json")
}

func (m *Manager) backupDir() string {
	return filepath.Join(m.dataDir, "backups")
}

func (m *Manager) loadSessions() error {
	if err := ensureDir(m.sessionsDir()); err != nil {
		return err
	}
	paths, err := filepath.Glob(filepath.Join(m.sessionsDir(), "*.json"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		var st sessionState
		if err := readJSON(path, &st); err != nil {
			m.log.Warn("skip unreadable session draft", zap.String("path", path), zap.Error(err))
			continue
		}
		if st.SessionID == "" {
			continue
		}
		if st.Answers == nil {
			st.Answers = model.AnswerMap{}
		}
		m.sessions[st.SessionID] = &session{state: st}
	}
	return nil
}

// 调用方持有 s.mu
func (m *Manager) persistLocked(s *session) error {
	return writeJSONAtomic(m.statePath(s.state.SessionID), s.state)
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// workbookLock 同一工作簿的保存与报表重建串行执行
func (m *Manager) workbookLock(path string) *sync.Mutex {
	key := parser.Fold(filepath.Clean(path))
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Questions 读取工作簿问题表
func (m *Manager) Questions(workbookPath string) ([]model.Question, error) {
	book, err := workbook.OpenExcelBook(workbookPath)
	if err != nil {
		return nil, err
	}
	defer book.Close()
	return m.engine.Questions(book)
}

// Create 为工作簿创建新会话
func (m *Manager) Create(workbookPath string) (Summary, error) {
	if err := requireNonEmptyString(workbookPath, "workbook path is required"); err != nil {
		return Summary{}, err
	}
	abs, err := filepath.Abs(strings.TrimSpace(workbookPath))
	if err != nil {
		return Summary{}, err
	}
	if !fileExists(abs) {
		return Summary{}, fmt.Errorf("workbook %s: %w", abs, os.ErrNotExist)
	}

	questions, err := m.Questions(abs)
	if err != nil {
		return Summary{}, err
	}

	now := m.now()
	s := &session{
		state: sessionState{
			SchemaVersion: schemaVersion,
			SessionID:     uuid.NewString(),
			WorkbookPath:  abs,
			Answers:       model.AnswerMap{},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		questions: questions,
	}
	if err := m.persistLocked(s); err != nil {
		return Summary{}, err
	}

	m.mu.Lock()
	m.sessions[s.state.SessionID] = s
	m.mu.Unlock()

	m.log.Info("session created",
		zap.String("session_id", s.state.SessionID),
		zap.String("workbook", abs),
		zap.Int("questions", len(questions)))
	return summarize(&s.state), nil
}

// Get 会话详情；问题表在首次访问时读取
func (m *Manager) Get(id string) (Detail, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Detail{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := m.ensureQuestionsLocked(s); err != nil {
		return Detail{}, err
	}
	return Detail{
		Summary:   summarize(&s.state),
		Questions: s.questions,
		Answers:   s.state.Answers.Clone(),
		LastSave:  s.state.LastSave,
	}, nil
}

// 调用方持有 s.mu
func (m *Manager) ensureQuestionsLocked(s *session) error {
	if s.questions != nil {
		return nil
	}
	questions, err := m.Questions(s.state.WorkbookPath)
	if err != nil {
		return err
	}
	s.questions = questions
	return nil
}

// List 所有会话，按创建时间排序
func (m *Manager) List() []Summary {
	m.mu.Lock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	out := make([]Summary, 0, len(all))
	for _, s := range all {
		s.mu.Lock()
		out = append(out, summarize(&s.state))
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete 删除会话及其草稿文件
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(m.statePath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SetAnswers 写入表单答案
//
// replace 为 true 时视为整表提交：未提交的勾选项记为 "Nein"。
// 否则只合并 raw 中出现的键。
func (m *Manager) SetAnswers(id string, raw map[string]any, replace bool) (model.AnswerMap, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := m.ensureQuestionsLocked(s); err != nil {
		return nil, err
	}

	normalized, err := parser.NormalizeAnswers(s.questions, raw)
	if err != nil {
		return nil, err
	}
	if replace {
		s.state.Answers = normalized
	} else {
		for k := range raw {
			key, _ := model.ParseAnswerKey(k)
			s.state.Answers[key] = normalized[key]
		}
	}
	s.state.UpdatedAt = m.now()
	if err := m.persistLocked(s); err != nil {
		return nil, err
	}
	return s.state.Answers.Clone(), nil
}

// Save 用会话答案执行一次保存并写回工作簿
//
// 保存前备份工作簿；保存日志与备份失败只记日志。
func (m *Manager) Save(id string, progress engine.ProgressFunc) (model.SaveResult, error) {
	s, err := m.lookup(id)
	if err != nil {
		return model.SaveResult{}, err
	}
	s.mu.Lock()
	path := s.state.WorkbookPath
	answers := s.state.Answers.Clone()
	s.mu.Unlock()

	lock := m.workbookLock(path)
	lock.Lock()
	defer lock.Unlock()

	log := m.log.With(zap.String("session_id", id), zap.String("workbook", path))
	logID := m.startSaveLog(log, id, path)

	result, err := m.saveWorkbook(log, path, answers, progress)
	if err != nil {
		m.finishSaveLog(log, logID, result, store.SaveStatusFailed, err)
		return result, err
	}

	status := store.SaveStatusSuccess
	if result.NothingNew {
		status = store.SaveStatusNothingNew
	}
	m.finishSaveLog(log, logID, result, status, nil)

	s.mu.Lock()
	s.state.SaveCount++
	s.state.LastSavedAt = m.now()
	s.state.UpdatedAt = s.state.LastSavedAt
	s.state.LastSave = &result
	if err := m.persistLocked(s); err != nil {
		log.Warn("persist session draft failed", zap.Error(err))
	}
	s.mu.Unlock()

	return result, nil
}

func (m *Manager) saveWorkbook(log *zap.Logger, path string, answers model.AnswerMap, progress engine.ProgressFunc) (model.SaveResult, error) {
	if backup, err := backupFile(path, m.backupDir(), backupKeep, m.now()); err != nil {
		log.Warn("workbook backup failed", zap.Error(err))
	} else {
		log.Debug("workbook backed up", zap.String("backup", backup))
	}

	book, err := workbook.OpenExcelBook(path)
	if err != nil {
		return model.SaveResult{}, err
	}
	defer book.Close()

	result, err := m.engine.Save(book, answers, progress)
	if err != nil {
		return result, err
	}
	// 无新记录时表头也可能已更新，仍写回文件
	if err := book.Save(); err != nil {
		return result, fmt.Errorf("failed to write workbook: %w", err)
	}
	return result, nil
}

func (m *Manager) startSaveLog(log *zap.Logger, sessionID, path string) int64 {
	if m.store == nil {
		return 0
	}
	id, err := m.store.CreateSaveLog("", sessionID, path)
	if err != nil {
		log.Warn("create save log failed", zap.Error(err))
		return 0
	}
	return id
}

func (m *Manager) finishSaveLog(log *zap.Logger, logID int64, result model.SaveResult, status string, saveErr error) {
	if m.store == nil || logID == 0 {
		return
	}
	r := store.SaveLogResult{
		SaveID:     result.SaveID,
		Candidates: result.Candidates,
		Appended:   result.Appended,
		Skipped:    result.Skipped,
		InsertRow:  result.InsertRow,
		Status:     status,
	}
	if saveErr != nil {
		r.ErrorMessage = saveErr.Error()
	}
	if err := m.store.FinishSaveLog(logID, r); err != nil {
		log.Warn("finish save log failed", zap.Error(err))
	}
	if result.SaveID != "" && saveErr == nil {
		if err := m.store.SetConfig(store.ConfigLastSaveID, result.SaveID); err != nil {
			log.Warn("remember last save id failed", zap.Error(err))
		}
	}
}

// Report 单独重建工作簿的 Reporting 表并写回
func (m *Manager) Report(workbookPath string) (model.ReportSummary, error) {
	lock := m.workbookLock(workbookPath)
	lock.Lock()
	defer lock.Unlock()

	book, err := workbook.OpenExcelBook(workbookPath)
	if err != nil {
		return model.ReportSummary{}, err
	}
	defer book.Close()

	sum, err := m.engine.Report(book)
	if err != nil {
		return sum, err
	}
	if err := book.Save(); err != nil {
		return sum, fmt.Errorf("failed to write workbook: %w", err)
	}
	return sum, nil
}

// History 保存历史；sessionID 为空时返回全部
func (m *Manager) History(sessionID string, limit int) ([]store.SaveLog, error) {
	if m.store == nil {
		return []store.SaveLog{}, nil
	}
	logs, err := m.store.ListSaveLogs(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []store.SaveLog{}
	}
	return logs, nil
}

func summarize(st *sessionState) Summary {
	return Summary{
		SessionID:    st.SessionID,
		WorkbookPath: st.WorkbookPath,
		AnswerCount:  len(st.Answers),
		SaveCount:    st.SaveCount,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
		LastSavedAt:  st.LastSavedAt,
	}
}
