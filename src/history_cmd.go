package main

import (
	"fmt"
	"strconv"

	"github.com/contre95/dispatch/src/features/config"
	"github.com/contre95/dispatch/src/infra/database"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand(flags *runFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recorded runs, or the results of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			path := cfg.History.Path
			if flags.historyPath != "" {
				path = flags.historyPath
			}
			history, err := database.NewSqliteHistory(path)
			if err != nil {
				return fmt.Errorf("failed to open history journal: %w", err)
			}
			defer history.Close()

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)

			if len(args) == 0 {
				runs, err := history.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				tw.AppendHeader(table.Row{"Run", "Started", "Mode", "Source", "Destination", "Transferred", "Skipped", "Failed"})
				for _, r := range runs {
					mode := r.Mode
					if r.DryRun {
						mode += " (dry run)"
					}
					tw.AppendRow(table.Row{r.ID, r.StartedAt, mode, r.Source, r.Destination, r.Transferred, r.Skipped, r.Failed})
				}
			} else {
				entries, err := history.Results(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return fmt.Errorf("no results recorded for run %s", args[0])
				}
				tw.AppendHeader(table.Row{"#", "Outcome", "Source", "Destination", "Reason", "Error"})
				for i, e := range entries {
					tw.AppendRow(table.Row{strconv.Itoa(i + 1), e.Outcome, e.Source, e.Destination, e.Reason, e.Error})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	return cmd
}
