package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bidspatch/internal/journal"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show journaled patch runs, or the actions of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(store *journal.Store) error {
				if len(args) == 1 {
					return reportRun(cmd, store, args[0])
				}
				return reportRecent(cmd, store, limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func reportRecent(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No patch runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.SeriesID,
			run.AcquisitionDir,
			yesNo(run.DryRun),
			formatTimestamp(run.StartedAt),
			finishedLabel(run),
		})
	}
	renderRows(
		cmd.OutOrStdout(),
		[]string{"RUN", "SERIES", "DIRECTORY", "DRY RUN", "STARTED", "FINISHED"},
		rows,
		nil,
	)
	return nil
}

func reportRun(cmd *cobra.Command, store *journal.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	actions, err := store.RunActions(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintf(out, "Series:    %s\n", run.SeriesID)
	fmt.Fprintf(out, "Directory: %s\n", run.AcquisitionDir)
	fmt.Fprintf(out, "Dry run:   %s\n", yesNo(run.DryRun))
	fmt.Fprintf(out, "Started:   %s\n", formatTimestamp(run.StartedAt))
	fmt.Fprintf(out, "Finished:  %s\n", finishedLabel(*run))

	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions recorded")
		return nil
	}

	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{
			strconv.FormatInt(action.ID, 10),
			action.Kind,
			action.Source,
			action.Target,
			action.Detail,
		})
	}
	renderRows(
		out,
		[]string{"#", "KIND", "SOURCE", "TARGET", "DETAIL"},
		rows,
		[]columnAlignment{alignRight},
	)
	return nil
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func finishedLabel(run journal.Run) string {
	if !run.Finished() {
		return "incomplete"
	}
	return formatTimestamp(run.FinishedAt)
}
