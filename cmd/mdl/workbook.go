package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/config"
	"github.com/KKoehn92/Master-Document-Tool/internal/store"
)

func newWorkbookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workbook",
		Short: "Gespeicherten Arbeitsmappen-Pfad verwalten",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <path>",
		Short: "Pfad der Arbeitsmappe merken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			if err := config.RememberWorkbookPath(a.cfg, a.info.Path, args[0]); err != nil {
				return err
			}
			st, _, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.SetConfig(store.ConfigLastWorkbook, a.cfg.Workbook.Path); err != nil {
				a.log.Warn("remember workbook in store failed", zap.Error(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Workbook.Path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Gespeicherten Pfad anzeigen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Workbook.Path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(nicht gesetzt)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.cfg.Workbook.Path)
			return nil
		},
	})
	return cmd
}
