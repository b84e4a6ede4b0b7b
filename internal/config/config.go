package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

// 环境变量覆盖
const (
	EnvWorkbookPath = "MDL_WORKBOOK_PATH"
	EnvDataDir      = "MDL_DATA_DIR"
	EnvLogLevel     = "MDL_LOG_LEVEL"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Workbook WorkbookConfig `toml:"workbook"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// WorkbookConfig 工作簿路径与工作表名
type WorkbookConfig struct {
	Path            string   `toml:"path"`
	QuestionSheet   string   `toml:"question_sheet"`
	MasterSheet     string   `toml:"master_sheet"`
	ReferenceSheets []string `toml:"reference_sheets"`
	ReportingSheet  string   `toml:"reporting_sheet"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Workbook: WorkbookConfig{
			QuestionSheet:   model.SheetQuestions,
			MasterSheet:     model.SheetMaster,
			ReferenceSheets: append([]string(nil), model.DefaultReferenceSheets...),
			ReportingSheet:  model.SheetReporting,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func baseDir() string {
	dir, err := GetExeDir()
	if err != nil || dir == "" {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return dir
}

// DefaultConfigPath 可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// LoadConfigWithInfo 加载配置并返回元信息；path 为空时使用 DefaultConfigPath
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	config, info, err := loadFile(path)
	if err != nil {
		return nil, info, err
	}
	applyEnv(config)
	fillSheetDefaults(config)
	return config, info, nil
}

// loadFile 只读取配置文件（缺省值 + 文件内容），不套用环境变量
func loadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// 环境变量覆盖（用于 E2E / 本地运行）
func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWorkbookPath)); v != "" {
		config.Workbook.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		config.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.Log.Level = v
	}
}

// 配置文件里显式写空的工作表名回退为默认值
func fillSheetDefaults(config *AppConfig) {
	defaults := DefaultConfig().Workbook
	wb := &config.Workbook
	if wb.QuestionSheet == "" {
		wb.QuestionSheet = defaults.QuestionSheet
	}
	if wb.MasterSheet == "" {
		wb.MasterSheet = defaults.MasterSheet
	}
	if len(wb.ReferenceSheets) == 0 {
		wb.ReferenceSheets = defaults.ReferenceSheets
	}
	if wb.ReportingSheet == "" {
		wb.ReportingSheet = defaults.ReportingSheet
	}
}

// SaveConfig 保存配置；path 为空时使用 DefaultConfigPath
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RememberWorkbookPath 记住用户选择的工作簿路径
//
// 重新读取配置文件，只改 workbook.path 后写回；环境变量等运行时覆盖不会落盘。
// 写回成功后同步更新内存中的 config。
func RememberWorkbookPath(config *AppConfig, configPath, workbookPath string) error {
	abs, err := filepath.Abs(strings.TrimSpace(workbookPath))
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	onDisk, _, err := loadFile(configPath)
	if err != nil {
		return err
	}
	onDisk.Workbook.Path = abs
	if err := SaveConfig(onDisk, configPath); err != nil {
		return err
	}
	config.Workbook.Path = abs
	return nil
}

// DataDir 数据目录；相对路径以可执行文件目录为基准
func DataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(baseDir(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := DataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	if err := os.MkdirAll(filepath.Join(dataDir, "backups"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// DatabasePath 保存日志数据库文件路径
func DatabasePath(config *AppConfig) string {
	return filepath.Join(DataDir(config), "mdl.db")
}
