package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dailyworkspace/daybook/internal/backup"
	"github.com/dailyworkspace/daybook/internal/export"
	"github.com/dailyworkspace/daybook/internal/importer"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a JSON backup of the whole journal",
	Long: `Write every note, entry, label and search query to a JSON backup.

With no file argument the document is written to stdout. Use "-" for stdout
explicitly, or "." to write daily-workspace-backup-YYYYMMDD-HHMMSS.json in the
current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := export.Export(rootCtx, store)
		if err != nil {
			return err
		}
		target := "-"
		if len(args) == 1 {
			target = args[0]
		}
		switch target {
		case "-":
			return export.Encode(stdout, doc)
		case ".":
			target = backup.Filename(nowFunc())
		}
		if err := export.WriteFile(target, doc); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]any{"path": target, "notes": len(doc.Notes)})
		}
		printf("%s %d notes to %s\n", pass("Exported"), len(doc.Notes), accent(target))
		return nil
	},
}

var importReplace bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Reconcile a JSON backup into the journal",
	Long: `Import a backup produced by "daybook export".

Labels are matched by name. Days that already exist are skipped unless
--replace is given, in which case their entries are overwritten. Pinned
entries are relinked so they do not multiply on later days. The whole import
runs in one transaction: on failure nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		doc, err := backup.Parse(f, settings.ImportMaxBytes)
		if err != nil {
			return err
		}
		res, err := importer.Import(rootCtx, store, doc, importer.Options{Replace: importReplace})
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(res.Stats)
		}
		printImportStats(res.Stats)
		return nil
	},
}

func printImportStats(s importer.Stats) {
	printf("%s\n", pass("Data imported successfully"))
	printf("  notes:          %d imported, %s\n", s.NotesImported, muted(fmt.Sprintf("%d skipped", s.NotesSkipped)))
	printf("  entries:        %d imported\n", s.EntriesImported)
	printf("  labels:         %d imported, %s\n", s.LabelsImported, muted(fmt.Sprintf("%d matched", s.LabelsSkipped)))
	printf("  search history: %d imported\n", s.SearchHistoryImported)
}

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Overwrite days that already exist")
	rootCmd.AddCommand(exportCmd, importCmd)
}
