package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	var workbook string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reporting-Blatt neu aufbauen",
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

			sum, err := m.Report(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !sum.HasData {
				fmt.Fprintln(out, "Keine Daten in der Master Document List.")
				return nil
			}
			fmt.Fprintf(out, "Gesamt: %d, hochgeladen: %d, offen: %d\n", sum.TotalRows, sum.Uploaded, sum.Outstanding)
			return nil
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "workbook path (default: remembered path)")
	return cmd
}
