package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailyworkspace/daybook/internal/types"
)

// nowFunc is swapped by tests.
var nowFunc = time.Now

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Inspect daily notes",
}

var noteShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show a day, carrying pinned entries forward onto it",
	Long: `Show the note for a date (YYYY-MM-DD, default today).

Reading a day copies every pinned entry from earlier days that is not already
present, exactly as the HTTP API does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := types.FormatDate(nowFunc())
		if len(args) == 1 {
			date = args[0]
		}
		note, err := newPropagator().GetNote(rootCtx, date)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(note)
		}
		printNote(note)
		return nil
	},
}

func printNote(note *types.DailyNote) {
	printf("%s", accent(note.Date))
	if note.FireRating > 0 {
		printf("  %s", warn(strings.Repeat("*", note.FireRating)))
	}
	printf("\n")
	if note.DailyGoal != "" {
		printf("  %s %s\n", muted("goal:"), note.DailyGoal)
	}
	if len(note.Entries) == 0 {
		printf("  %s\n", muted("(no entries)"))
		return
	}
	for _, e := range note.Entries {
		printf("  %s %s\n", entryMarker(e), entrySummary(e))
	}
}

func entryMarker(e *types.NoteEntry) string {
	switch {
	case e.IsCompleted:
		return pass("[x]")
	case e.IsPinned:
		return warn("[^]")
	default:
		return "[ ]"
	}
}

func entrySummary(e *types.NoteEntry) string {
	text := e.Title
	if text == "" {
		text = e.Content
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 72 {
		text = text[:69] + "..."
	}
	if e.IsImportant {
		text = warn("! ") + text
	}
	return text
}

func init() {
	noteCmd.AddCommand(noteShowCmd)
	rootCmd.AddCommand(noteCmd)
}
