package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

type cliEnv struct {
	dir      string
	config   string
	workbook string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("MDL_WORKBOOK_PATH", "")
	t.Setenv("MDL_DATA_DIR", "")
	t.Setenv("MDL_LOG_LEVEL", "error")
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", model.SheetQuestions))
	require.NoError(t, f.SetCellValue(model.SheetQuestions, "A14", "Mastnummern"))
	require.NoError(t, f.SetCellValue(model.SheetQuestions, "A16", "Planungsstand"))
	require.NoError(t, f.SetCellValue(model.SheetQuestions, "A58", "Gibt es Mastbilder?"))
	_, err := f.NewSheet(model.SheetMaster)
	require.NoError(t, err)
	_, err = f.NewSheet("IBL-OHL Neubau")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("IBL-OHL Neubau", "E7", "MB-001"))
	require.NoError(t, f.SetCellValue("IBL-OHL Neubau", "V7", "Je Mast"))
	wb := filepath.Join(dir, "liste.xlsx")
	require.NoError(t, f.SaveAs(wb))

	cfg := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("[data]\ndata_dir = %q\n", filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0644))

	return &cliEnv{dir: dir, config: cfg, workbook: wb}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "questions", "save", "report", "workbook"} {
		assert.Contains(t, out, name)
	}
}

func TestWorkbookSetShow(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "workbook", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "nicht gesetzt")

	_, err = env.run(t, "workbook", "set", filepath.Join(env.dir, "fehlt.xlsx"))
	assert.Error(t, err)

	_, err = env.run(t, "workbook", "set", env.workbook)
	require.NoError(t, err)

	out, err = env.run(t, "workbook", "show")
	require.NoError(t, err)
	assert.Equal(t, env.workbook, strings.TrimSpace(out))

	st, err := store.New(filepath.Join(env.dir, "data", "mdl.db"))
	require.NoError(t, err)
	defer st.Close()
	last, err := st.GetConfig(store.ConfigLastWorkbook)
	require.NoError(t, err)
	assert.Equal(t, env.workbook, last)

	t.Setenv("MDL_LOG_LEVEL", "")
	saved, err := config.LoadConfig(env.config)
	require.NoError(t, err)
	assert.Equal(t, "info", saved.Log.Level, "MDL_LOG_LEVEL is not written back")
	assert.Equal(t, env.workbook, saved.Workbook.Path)
}

func TestQuestionsCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "questions")
	assert.Error(t, err, "no workbook remembered")

	out, err := env.run(t, "questions", "--workbook", env.workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Mastnummern")
	assert.Contains(t, out, "yesno")

	out, err = env.run(t, "questions", "--workbook", env.workbook, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": 58`)
}

func TestSaveAndReportCommands(t *testing.T) {
	env := newCLIEnv(t)
	answers := filepath.Join(env.dir, "answers.yaml")
	require.NoError(t, os.WriteFile(answers, []byte("58: Ja\n14: M01-M02\n16: V\n"), 0644))

	out, err := env.run(t, "save", "--workbook", env.workbook, "--answers", answers)
	require.NoError(t, err)
	assert.Contains(t, out, "Daten übernommen! (neu: 2)")
	assert.Contains(t, out, "Zeilen 7-8")

	out, err = env.run(t, "save", "--workbook", env.workbook, "--answers", answers)
	require.NoError(t, err)
	assert.Contains(t, out, "Keine neuen Datensätze")

	drafts, err := filepath.Glob(filepath.Join(env.dir, "data", "sessions", "*.json"))
	require.NoError(t, err)
	assert.Empty(t, drafts)

	out, err = env.run(t, "report", "--workbook", env.workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Gesamt: 2")

	_, err = env.run(t, "save", "--workbook", env.workbook)
	assert.Error(t, err, "--answers is required")
}
