package main

import (
	"github.com/spf13/cobra"
)

var kanbanCmd = &cobra.Command{
	Use:   "kanban",
	Short: "Manage the Kanban board",
}

var kanbanInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the default Kanban columns",
	Long: `Create the configured Kanban columns (kanban.columns, default
"To Do", "In Progress", "Done"). Fails if any Kanban column already exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := newEnforcer().InitializeKanban(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(cols)
		}
		for _, c := range cols {
			printf("%s %s\n", pass("Created column"), accent(c.Name))
		}
		return nil
	},
}

var kanbanShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the Kanban board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := newEnforcer().Board(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(board)
		}
		if len(board) == 0 {
			printf("%s\n", muted("No Kanban columns. Run 'daybook kanban init'."))
			return nil
		}
		for _, col := range board {
			printf("%s %s\n", accent(col.List.Name), muted("("+itoa(len(col.Entries))+")"))
			for _, e := range col.Entries {
				printf("  %s %s\n", entryMarker(e), entrySummary(e))
			}
		}
		return nil
	},
}

func init() {
	kanbanCmd.AddCommand(kanbanInitCmd, kanbanShowCmd)
	rootCmd.AddCommand(kanbanCmd)
}
