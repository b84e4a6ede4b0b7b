package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KKoehn92/Master-Document-Tool/internal/engine"
)

// readAnswers 读取 YAML 答案文件：问题行号 -> 值
func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var byRow map[int]any
	if err := yaml.Unmarshal(data, &byRow); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	raw := make(map[string]any, len(byRow))
	for k, v := range byRow {
		raw[strconv.Itoa(k)] = v
	}
	return raw, nil
}

func newSaveCmd(a *app) *cobra.Command {
	var (
		workbook    string
		answersFile string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Antworten übernehmen und an die Master Document List anhängen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.workbookPath(workbook)
			if err != nil {
				return err
			}
			raw, err := readAnswers(answersFile)
			if err != nil {
				return err
			}

			m, closer, err := a.sessions()
			if err != nil {
				return err
			}
			defer closer()

			sum, err := m.Create(path)
			if err != nil {
				return err
			}
			// 命令行保存不保留草稿
			defer func() { _ = m.Delete(sum.SessionID) }()

			if _, err := m.SetAnswers(sum.SessionID, raw, true); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			res, err := m.Save(sum.SessionID, func(ev engine.ProgressEvent) {
				if a.verbose {
					fmt.Fprintf(out, "%3d%% %s\n", ev.Percent, ev.Stage)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, res.Message())
			if !res.NothingNew {
				fmt.Fprintf(out, "Zeilen %d-%d, übersprungen: %d\n", res.InsertRow, res.InsertRow+res.Appended-1, res.Skipped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "workbook path (default: remembered path)")
	cmd.Flags().StringVar(&answersFile, "answers", "", "YAML file: question row -> answer")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
