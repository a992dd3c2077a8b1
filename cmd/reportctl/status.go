package main

import (
	"github.com/bwise1/reportnow/internal/client"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/spf13/cobra"
)

func newStatusCmd(newClient func() (*client.Client, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "status <reportId> [newStatus]",
		Short: "Show a report, or set its status",
		Long: "With one argument the report is printed. With two the status is replaced,\n" +
			"e.g. " + model.StatusInProgress + " or " + model.StatusResolved + ", and the reporter is emailed if they opted in.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			var report model.Report
			if len(args) == 1 {
				report, err = c.GetReport(cmd.Context(), args[0])
			} else {
				report, err = c.UpdateStatus(cmd.Context(), args[0], args[1])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
