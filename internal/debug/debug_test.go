package debug

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		verbose bool
		want    bool
	}{
		{"env enabled", true, false, true},
		{"verbose flag", false, true, true},
		{"disabled", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled, oldVerbose := enabled, verboseMode
			defer func() { enabled, verboseMode = oldEnabled, oldVerbose }()

			enabled = tt.enabled
			SetVerbose(tt.verbose)

			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w
	defer func() { os.Stderr = oldStderr }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestLogf(t *testing.T) {
	oldEnabled := enabled
	defer func() { enabled = oldEnabled }()

	enabled = true
	out := captureStderr(t, func() { Logf("test message: %s\n", "hello") })
	assert.Equal(t, "test message: hello\n", out)

	enabled = false
	out = captureStderr(t, func() { Logf("test message: %s\n", "hello") })
	assert.Empty(t, out)
}

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	oldOut := warnOut
	warnOut = &buf
	defer func() { warnOut = oldOut }()

	SetQuiet(true)
	defer SetQuiet(false)

	Warnf("propagation for %s failed", "2025-11-02")
	assert.Contains(t, buf.String(), "warning:")
	assert.Contains(t, buf.String(), "propagation for 2025-11-02 failed")
}

func TestLogEvent(t *testing.T) {
	dir := t.TempDir()
	SetEventLogDir(dir)
	defer SetEventLogDir("")

	LogEvent("IMPORT", "backup.json", "notes_imported=2")
	LogEvent("PROPAGATE", "", "copies=1")

	data, err := os.ReadFile(filepath.Join(dir, "events.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "|IMPORT|backup.json|notes_imported=2")
	assert.Contains(t, lines[1], "|PROPAGATE|none|copies=1")
}

func TestLogEventDisabled(t *testing.T) {
	SetEventLogDir("")
	// Must not panic or write anywhere.
	LogEvent("IMPORT", "x", "y")
}
