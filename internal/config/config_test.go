package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvWorkbookPath, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.False(t, info.FileFound)
	assert.False(t, info.PortSpecified)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithInfo_File(t *testing.T) {
	t.Setenv(EnvWorkbookPath, "")
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9000

[workbook]
path = "/srv/mdl/liste.xlsx"
reference_sheets = ["Bestand"]
master_sheet = ""

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.True(t, info.FileFound)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/mdl/liste.xlsx", cfg.Workbook.Path)
	assert.Equal(t, []string{"Bestand"}, cfg.Workbook.ReferenceSheets)
	assert.Equal(t, "Master Document List", cfg.Workbook.MasterSheet)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data", cfg.Data.DataDir)
}

func TestLoadConfigWithInfo_PortNotSpecified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\ndev_mode = true\n"), 0644))

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.False(t, info.PortSpecified)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoadConfigWithInfo_EnvOverrides(t *testing.T) {
	t.Setenv(EnvWorkbookPath, "/tmp/env.xlsx")
	t.Setenv(EnvDataDir, "/tmp/mdl-data")
	t.Setenv(EnvLogLevel, "warn")

	cfg, _, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "/tmp/mdl-data", cfg.Data.DataDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/mdl-data", DataDir(cfg))
}

func TestLoadConfigWithInfo_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0644))

	_, _, err := LoadConfigWithInfo(path)
	assert.Error(t, err)
}

func TestRememberWorkbookPath(t *testing.T) {
	t.Setenv(EnvWorkbookPath, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "config.toml")
	workbook := filepath.Join(dir, "liste.xlsx")

	cfg := DefaultConfig()
	require.NoError(t, RememberWorkbookPath(cfg, path, workbook))
	assert.Equal(t, workbook, cfg.Workbook.Path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, workbook, loaded.Workbook.Path)
	assert.Equal(t, cfg.Server.Port, loaded.Server.Port)
}

func TestRememberWorkbookPath_KeepsOverridesOutOfFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 8080\n\n[data]\ndata_dir = \"daten\"\n"), 0644))

	t.Setenv(EnvWorkbookPath, "")
	t.Setenv(EnvDataDir, filepath.Join(dir, "env-data"))
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "env-data"), cfg.Data.DataDir)
	cfg.Server.Port = 9999

	workbook := filepath.Join(dir, "liste.xlsx")
	require.NoError(t, RememberWorkbookPath(cfg, path, workbook))
	assert.Equal(t, workbook, cfg.Workbook.Path)
	assert.Equal(t, filepath.Join(dir, "env-data"), cfg.Data.DataDir, "in-memory overrides stay in effect")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "env-data")
	assert.NotContains(t, string(raw), "debug")
	assert.NotContains(t, string(raw), "9999")

	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, workbook, loaded.Workbook.Path)
	assert.Equal(t, "daten", loaded.Data.DataDir)
	assert.Equal(t, 8080, loaded.Server.Port)
	assert.Equal(t, "info", loaded.Log.Level)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "backups"))
	assert.Equal(t, filepath.Join(dir, "mdl.db"), DatabasePath(cfg))
}
