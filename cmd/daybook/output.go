package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// stdout is swapped by tests.
var stdout io.Writer = os.Stdout

var (
	accent = color.New(color.FgCyan).SprintFunc()
	muted  = color.New(color.Faint).SprintFunc()
	pass   = color.New(color.FgGreen).SprintFunc()
	warn   = color.New(color.FgYellow).SprintFunc()
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// outputJSONError outputs an error as JSON to stderr and exits with code 1.
func outputJSONError(err error) {
	encoder := json.NewEncoder(os.Stderr)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(map[string]string{"error": err.Error()})
	os.Exit(1)
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format, args...)
}
