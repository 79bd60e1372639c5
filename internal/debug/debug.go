// Package debug provides env-gated diagnostic output and the events log.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	enabled     = os.Getenv("DAYBOOK_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
	eventDir    string

	warnOut    io.Writer = os.Stderr
	warnPrefix           = color.New(color.FgYellow, color.Bold).SprintFunc()
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Warnf always prints to stderr, even in quiet mode. Used for failures that
// were swallowed so the caller could continue.
func Warnf(format string, args ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()
	fmt.Fprintf(warnOut, "%s %s\n", warnPrefix("warning:"), fmt.Sprintf(format, args...))
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}

// SetEventLogDir sets the directory holding events.log. An empty dir
// disables the events log, which is the default.
func SetEventLogDir(dir string) {
	logMutex.Lock()
	defer logMutex.Unlock()
	eventDir = dir
}

// LogEvent appends one line to events.log.
// Format: TIMESTAMP|EVENT_CODE|SUBJECT|DETAILS
func LogEvent(eventCode, subject, details string) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if eventDir == "" {
		return
	}
	if subject == "" {
		subject = "none"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	line := fmt.Sprintf("%s|%s|%s|%s\n", timestamp, eventCode, subject, details)

	if err := os.MkdirAll(eventDir, 0o750); err != nil {
		return
	}
	// #nosec G304 - path is built from the configured data directory
	file, err := os.OpenFile(filepath.Join(eventDir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		// Silent fail - don't interrupt operations if logging fails
		return
	}
	defer func() { _ = file.Close() }()

	_, _ = file.WriteString(line)
}
