package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
	"github.com/KKoehn92/Master-Document-Tool/internal/logging"
	"github.com/KKoehn92/Master-Document-Tool/internal/server"
	"github.com/KKoehn92/Master-Document-Tool/internal/service/session"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

// app 命令共享的运行时状态
type app struct {
	cfgFile string
	verbose bool

	cfg  *config.AppConfig
	info config.LoadConfigInfo
	log  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mdl",
		Short: "Master Document List - Formular und Reporting",
		Long: `mdl pflegt die Master Document List einer OHL-Arbeitsmappe.

Aus den Antworten der Eingabemaske werden Dokumentzeilen abgeleitet,
ohne Duplikate an die Liste angehängt und das Reporting neu aufgebaut.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: config.toml next to the executable)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(a),
		newQuestionsCmd(a),
		newSaveCmd(a),
		newReportCmd(a),
		newWorkbookCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, info, err := config.LoadConfigWithInfo(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config %s: %w", info.Path, err)
	}
	level := cfg.Log.Level
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.cfg, a.info, a.log = cfg, info, logger
	if info.FileFound {
		logger.Debug("config loaded", zap.String("path", info.Path))
	}
	return nil
}

// workbookPath --workbook 优先，否则使用记住的路径
func (a *app) workbookPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if a.cfg.Workbook.Path != "" {
		return a.cfg.Workbook.Path, nil
	}
	return "", fmt.Errorf("%w: use --workbook or 'mdl workbook set'", engine.ErrNoWorkbook)
}

// sessions 构建会话管理器；返回的 closer 关闭数据库
// openStore 打开数据目录下的 SQLite 库
func (a *app) openStore() (*store.Store, string, error) {
	dataDir, err := config.EnsureDataDir(a.cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(config.DatabasePath(a.cfg))
	if err != nil {
		return nil, "", err
	}
	return st, dataDir, nil
}

func (a *app) sessions() (*session.Manager, func(), error) {
	st, dataDir, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	closer := func() { _ = st.Close() }

	eng, err := engine.New(server.EngineOptions(a.cfg, a.log))
	if err != nil {
		closer()
		return nil, nil, err
	}
	m, err := session.NewManager(eng, session.Options{
		DataDir: dataDir,
		Store:   st,
		Logger:  a.log.Named("session"),
	})
	if err != nil {
		closer()
		return nil, nil, err
	}
	return m, closer, nil
}
