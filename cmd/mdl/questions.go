package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newQuestionsCmd(a *app) *cobra.Command {
	var (
		workbook string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Formularfelder aus der Eingabemaske anzeigen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.workbookPath(workbook)
			if err != nil {
				return err
			}
			m, closer, err := a.sessions()
			if err != nil {
				return err
			}
			defer closer()

			questions, err := m.Questions(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(questions)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tKIND\tTEXT")
			for _, q := range questions {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", q.Key, q.Kind, q.Text)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "workbook path (default: remembered path)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
