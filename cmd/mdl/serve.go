package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/server"
	"github.com/KKoehn92/Master-Document-Tool/internal/util"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      int
		devMode   bool
		dataDir   string
		noBrowser bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Formular als lokalen Webdienst starten",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			// 命令行参数覆盖配置；port 仅当配置文件未显式指定时生效
			if port > 0 && !a.info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "==========================================")
			fmt.Fprintln(out, "  Master Document List")
			fmt.Fprintln(out, "==========================================")
			fmt.Fprintf(out, "Datenverzeichnis: %s\n", config.DataDir(cfg))

			srv, err := server.NewServer(cfg, a.info.Path, a.log)
			if err != nil {
				return err
			}
			defer srv.Close()

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run(addr)
			}()

			if !cfg.Server.DevMode && !noBrowser {
				if err := util.OpenBrowser(url); err != nil {
					a.log.Warn("open browser failed", zap.Error(err))
					fmt.Fprintf(out, "Bitte im Browser öffnen: %s\n", url)
				}
			} else {
				fmt.Fprintf(out, "Formular: %s\n", url)
			}
			fmt.Fprintln(out, "Strg+C beendet den Dienst.")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return fmt.Errorf("server stopped: %w", err)
			case <-quit:
				a.log.Info("shutting down")
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port (only when config.toml does not set server.port)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "development mode (frontend dev server, no browser)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the browser")
	return cmd
}
