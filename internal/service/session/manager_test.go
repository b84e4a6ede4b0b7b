package session

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

// writeWorkbook 生成最小可用的工作簿：问题表、目标表、参考表
func writeWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", model.SheetQuestions))
	for cell, v := range map[string]string{
		"A14": "Mastnummern",
		"A16": "Planungsstand",
		"A58": "Gibt es Mastbilder?",
		"D58": "Ja oder Nein",
	} {
		require.NoError(t, f.SetCellValue(model.SheetQuestions, cell, v))
	}

	_, err := f.NewSheet(model.SheetMaster)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(model.SheetMaster, "A6", "Dokument"))

	_, err = f.NewSheet("IBL-OHL Neubau")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("IBL-OHL Neubau", "E7", "MB-001"))
	require.NoError(t, f.SetCellValue("IBL-OHL Neubau", "V7", "Je Mast"))

	path := filepath.Join(dir, "liste.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newManager(t *testing.T, dataDir string) (*Manager, *store.Store) {
	t.Helper()
	eng, err := engine.New(engine.Options{Logger: zap.NewNop()})
	require.NoError(t, err)
	st, err := store.New(filepath.Join(dataDir, "mdl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m, err := NewManager(eng, Options{DataDir: dataDir, Store: st})
	require.NoError(t, err)
	return m, st
}

func masterCell(t *testing.T, path, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(model.SheetMaster, cell)
	require.NoError(t, err)
	return v
}

func TestManager_CreateSaveHistory(t *testing.T) {
	dir := t.TempDir()
	wb := writeWorkbook(t, dir)
	m, st := newManager(t, filepath.Join(dir, "data"))

	sum, err := m.Create(wb)
	require.NoError(t, err)
	assert.NotEmpty(t, sum.SessionID)

	detail, err := m.Get(sum.SessionID)
	require.NoError(t, err)
	assert.Len(t, detail.Questions, 3)

	answers, err := m.SetAnswers(sum.SessionID, map[string]any{
		"58": true,
		"14": "M01-M02",
		"16": "V",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerYes, answers[58])

	var events []engine.ProgressEvent
	res, err := m.Save(sum.SessionID, func(ev engine.ProgressEvent) { events = append(events, ev) })
	require.NoError(t, err)
	assert.Equal(t, 2, res.Appended)
	assert.Equal(t, 7, res.InsertRow)
	assert.NotEmpty(t, events)

	assert.Equal(t, "MB-001_V", masterCell(t, wb, "H7"))
	assert.Equal(t, "M02", masterCell(t, wb, "K8"))

	res, err = m.Save(sum.SessionID, nil)
	require.NoError(t, err)
	assert.True(t, res.NothingNew)

	logs, err := m.History(sum.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, store.SaveStatusNothingNew, logs[0].Status)
	assert.Equal(t, store.SaveStatusSuccess, logs[1].Status)
	assert.Equal(t, 2, logs[1].Appended)

	last, err := st.GetConfig(store.ConfigLastSaveID)
	require.NoError(t, err)
	assert.Equal(t, res.SaveID, last)

	backups, err := filepath.Glob(filepath.Join(dir, "data", "backups", "liste-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, backups, 2)

	detail, err = m.Get(sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Summary.SaveCount)
	require.NotNil(t, detail.LastSave)
	assert.True(t, detail.LastSave.NothingNew)
}

func TestManager_SetAnswersMerge(t *testing.T) {
	dir := t.TempDir()
	m, _ := newManager(t, filepath.Join(dir, "data"))
	sum, err := m.Create(writeWorkbook(t, dir))
	require.NoError(t, err)

	_, err = m.SetAnswers(sum.SessionID, map[string]any{"58": "Ja", "14": "M1"}, true)
	require.NoError(t, err)
	answers, err := m.SetAnswers(sum.SessionID, map[string]any{"16": "V2"}, false)
	require.NoError(t, err)
	assert.Equal(t, model.AnswerMap{58: "Ja", 14: "M1", 16: "V2"}, answers)

	_, err = m.SetAnswers(sum.SessionID, map[string]any{"A1": "x"}, false)
	assert.Error(t, err)
}

func TestManager_ReloadAndDelete(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	m, _ := newManager(t, dataDir)
	sum, err := m.Create(writeWorkbook(t, dir))
	require.NoError(t, err)
	_, err = m.SetAnswers(sum.SessionID, map[string]any{"14": "M7"}, false)
	require.NoError(t, err)

	eng, err := engine.New(engine.Options{Logger: zap.NewNop()})
	require.NoError(t, err)
	reloaded, err := NewManager(eng, Options{DataDir: dataDir})
	require.NoError(t, err)
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, sum.SessionID, list[0].SessionID)

	detail, err := reloaded.Get(sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "M7", detail.Answers[14])

	require.NoError(t, reloaded.Delete(sum.SessionID))
	_, err = reloaded.Get(sum.SessionID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, reloaded.Delete(sum.SessionID), ErrNotFound)
}

func TestManager_CreateMissingWorkbook(t *testing.T) {
	m, _ := newManager(t, t.TempDir())
	_, err := m.Create(filepath.Join(t.TempDir(), "fehlt.xlsx"))
	assert.Error(t, err)

	_, err = m.Create("  ")
	assert.Error(t, err)
}

func TestManager_ConcurrentSavesSameWorkbook(t *testing.T) {
	dir := t.TempDir()
	wb := writeWorkbook(t, dir)
	m, _ := newManager(t, filepath.Join(dir, "data"))

	var ids []string
	for i := 0; i < 2; i++ {
		sum, err := m.Create(wb)
		require.NoError(t, err)
		_, err = m.SetAnswers(sum.SessionID, map[string]any{"58": "Ja", "14": "M01-M02", "16": "V"}, true)
		require.NoError(t, err)
		ids = append(ids, sum.SessionID)
	}

	var wg sync.WaitGroup
	results := make([]model.SaveResult, len(ids))
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], errs[i] = m.Save(id, nil)
		}(i, id)
	}
	wg.Wait()

	total := 0
	for i := range ids {
		require.NoError(t, errs[i])
		total += results[i].Appended
	}
	assert.Equal(t, 2, total, "the second save sees the rows of the first")
	assert.Equal(t, "", masterCell(t, wb, "A9"))
}

func TestManager_Report(t *testing.T) {
	dir := t.TempDir()
	wb := writeWorkbook(t, dir)
	m, _ := newManager(t, filepath.Join(dir, "data"))

	sum, err := m.Report(wb)
	require.NoError(t, err)
	assert.False(t, sum.HasData)

	_, err = m.Report(filepath.Join(dir, "fehlt.xlsx"))
	assert.Error(t, err)
}
