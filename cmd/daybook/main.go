package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dailyworkspace/daybook/internal/config"
	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/storage/sqlite"
	"github.com/dailyworkspace/daybook/internal/telemetry"
)

var (
	dbPath      string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	store    storage.Storage
	settings config.Settings

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noDBCommands never open the store.
var noDBCommands = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
	"__complete": true,
}

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $DAYBOOK_DIR/daybook.db or ~/.daybook/daybook.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "daybook - daily journal with pinned entries and a Kanban board",
	Long: `A single-user daily journal. Each day holds entries; pinned entries carry
forward to later days, entries can be filed into lists or Kanban columns, and the
whole journal can be exported to and reconciled from a JSON backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("daybook version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		applyVerbosityFlags()
		applyFlagOverrides(cmd)
		settings = config.Snapshot()
		jsonOutput = jsonOutput || settings.JSON
		if settings.EventLog {
			debug.SetEventLogDir(config.DataDir())
		}

		if !cmd.HasParent() || noDBCommands[cmd.Name()] {
			return nil
		}

		if err := telemetry.Init(rootCtx, telemetryConfig(settings), "daybook", Version); err != nil {
			debug.Warnf("telemetry disabled: %v\n", err)
		}
		return openStore(rootCtx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
			store = nil
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			debug.Logf("telemetry shutdown: %v\n", err)
		}
		cancel()

		if rootCancel != nil {
			rootCancel()
		}
	},
}

func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

// applyFlagOverrides pushes --db into viper so it wins over config.yaml and
// DAYBOOK_DB.
func applyFlagOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("db") {
		config.Set(config.KeyDB, dbPath)
	}
}

func openStore(ctx context.Context) error {
	s, err := sqlite.NewWithOptions(ctx, settings.DBPath, sqlite.Options{LockTimeout: settings.LockTimeout})
	if err != nil {
		return fmt.Errorf("open %s: %w", settings.DBPath, err)
	}
	wrapped := telemetry.WrapStorage(s)
	if _, err := wrapped.EnsureAppSettings(ctx); err != nil {
		_ = wrapped.Close()
		return fmt.Errorf("initialize settings: %w", err)
	}
	debug.Logf("opened %s\n", wrapped.Path())
	store = wrapped
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if jsonOutput {
			outputJSONError(err)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
