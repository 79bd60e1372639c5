package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dailyworkspace/daybook/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Weekly reports of entries marked for reporting",
}

var reportWeekCmd = &cobra.Command{
	Use:   "week [date]",
	Short: "Show the report for the week containing date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		rep, err := newReports().Week(rootCtx, date)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(rep)
		}
		printReport(rep)
		return nil
	},
}

var reportWeeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List weeks that have reportable entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		weeks, err := newReports().AvailableWeeks(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(weeks)
		}
		for _, w := range weeks {
			printf("%s\n", w.Label)
		}
		return nil
	},
}

func printReport(rep *report.Report) {
	printf("%s %s %s\n", accent("Week of"), rep.WeekStart, muted("to "+rep.WeekEnd))
	if len(rep.Entries) == 0 {
		printf("  %s\n", muted("(nothing to report)"))
		return
	}
	day := ""
	for _, e := range rep.Entries {
		if e.Date != day {
			day = e.Date
			printf("%s\n", day)
		}
		marker := "-"
		if e.IsCompleted {
			marker = pass("x")
		}
		text := e.Title
		if text == "" {
			text = e.Content
		}
		printf("  %s %s\n", marker, text)
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func init() {
	reportCmd.AddCommand(reportWeekCmd, reportWeeksCmd)
	rootCmd.AddCommand(reportCmd)
}
