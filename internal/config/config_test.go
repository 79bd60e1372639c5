package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dailyworkspace/daybook/internal/types"
)

func TestInitialize(t *testing.T) {
	err := Initialize()
	if err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if v == nil {
		t.Fatal("viper instance is nil after Initialize()")
	}
}

func TestDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
		getter   func(string) interface{}
	}{
		{KeyJSON, false, func(k string) interface{} { return GetBool(k) }},
		{KeyDB, "", func(k string) interface{} { return GetString(k) }},
		{KeyListen, DefaultListen, func(k string) interface{} { return GetString(k) }},
		{KeyAllowRemote, false, func(k string) interface{} { return GetBool(k) }},
		{KeyLockTimeout, 30 * time.Second, func(k string) interface{} { return GetDuration(k) }},
		{KeyPropagationEnabled, true, func(k string) interface{} { return GetBool(k) }},
		{KeyPropagationLookback, 0, func(k string) interface{} { return GetInt(k) }},
		{KeyReportWeekStart, "wednesday", func(k string) interface{} { return GetString(k) }},
		{KeyImportMaxBytes, int64(64 << 20), func(k string) interface{} { return GetInt64(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestEnvironmentBinding(t *testing.T) {
	tests := []struct {
		envVar   string
		key      string
		value    string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"DAYBOOK_JSON", KeyJSON, "true", true, func(k string) interface{} { return GetBool(k) }},
		{"DAYBOOK_DB", KeyDB, "/tmp/x.db", "/tmp/x.db", func(k string) interface{} { return GetString(k) }},
		{"DAYBOOK_PROPAGATION_ENABLED", KeyPropagationEnabled, "false", false, func(k string) interface{} { return GetBool(k) }},
		{"DAYBOOK_PROPAGATION_LOOKBACK_DAYS", KeyPropagationLookback, "14", 14, func(k string) interface{} { return GetInt(k) }},
		{"DAYBOOK_LOCK_TIMEOUT", KeyLockTimeout, "5s", 5 * time.Second, func(k string) interface{} { return GetDuration(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			if err := Initialize(); err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}
			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("GetXXX(%q) with %s=%s = %v, want %v", tt.key, tt.envVar, tt.value, got, tt.expected)
			}
		})
	}
}

func writeProjectConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".daybook")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("failed to create .daybook directory: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Chdir(tmpDir)
	return path
}

func TestConfigFile(t *testing.T) {
	path := writeProjectConfig(t, `
json: true
listen: 127.0.0.1:9000
lock-timeout: 15s
propagation:
  lookback-days: 30
kanban:
  columns: [Backlog, Doing, Done]
`)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := ConfigFileUsed(); got == "" || filepath.Base(got) != filepath.Base(path) {
		t.Errorf("ConfigFileUsed() = %q, want %q", got, path)
	}
	if got := GetBool(KeyJSON); got != true {
		t.Errorf("GetBool(json) = %v, want true", got)
	}
	if got := GetString(KeyListen); got != "127.0.0.1:9000" {
		t.Errorf("GetString(listen) = %q, want 127.0.0.1:9000", got)
	}
	if got := GetDuration(KeyLockTimeout); got != 15*time.Second {
		t.Errorf("GetDuration(lock-timeout) = %v, want 15s", got)
	}
	if got := GetInt(KeyPropagationLookback); got != 30 {
		t.Errorf("GetInt(propagation.lookback-days) = %d, want 30", got)
	}
	if got := GetKanbanColumns(); len(got) != 3 || got[0] != "Backlog" {
		t.Errorf("GetKanbanColumns() = %v, want [Backlog Doing Done]", got)
	}
}

func TestConfigPrecedence(t *testing.T) {
	writeProjectConfig(t, `json: false`)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	if got := GetBool(KeyJSON); got != false {
		t.Errorf("GetBool(json) from config file = %v, want false", got)
	}

	t.Setenv("DAYBOOK_JSON", "true")
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	if got := GetBool(KeyJSON); got != true {
		t.Errorf("GetBool(json) with env var = %v, want true (env should override config)", got)
	}
}

func TestReload(t *testing.T) {
	path := writeProjectConfig(t, "propagation:\n  enabled: true\n")
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	if !Snapshot().Propagation {
		t.Fatal("propagation should start enabled")
	}

	if err := os.WriteFile(path, []byte("propagation:\n  enabled: false\n"), 0600); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}
	if err := Reload(); err != nil {
		t.Fatalf("Reload() returned error: %v", err)
	}
	if Snapshot().Propagation {
		t.Error("propagation should be disabled after reload")
	}
}

func TestSetAndGet(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("test-key", "test-value")
	if got := GetString("test-key"); got != "test-value" {
		t.Errorf("GetString(test-key) = %q, want \"test-value\"", got)
	}

	Set("test-bool", true)
	if got := GetBool("test-bool"); got != true {
		t.Errorf("GetBool(test-bool) = %v, want true", got)
	}

	Set("test-int", 42)
	if got := GetInt("test-int"); got != 42 {
		t.Errorf("GetInt(test-int) = %d, want 42", got)
	}
}

func TestAllSettings(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	Set("custom-key", "custom-value")

	settings := AllSettings()
	if val, ok := settings["custom-key"]; !ok || val != "custom-value" {
		t.Errorf("AllSettings() missing or incorrect custom-key: got %v", val)
	}
}

func TestGettersBeforeInitialize(t *testing.T) {
	ResetForTesting()
	t.Cleanup(func() { _ = Initialize() })

	if got := GetString(KeyListen); got != "" {
		t.Errorf("GetString before Initialize = %q, want empty", got)
	}
	if got := GetStringSlice(KeyKanbanColumns); got != nil {
		t.Errorf("GetStringSlice before Initialize = %v, want nil", got)
	}
	Set("ignored", 1)
	if got := AllSettings(); len(got) != 0 {
		t.Errorf("AllSettings before Initialize = %v, want empty", got)
	}
}

func TestSnapshot(t *testing.T) {
	t.Setenv("DAYBOOK_DIR", t.TempDir())
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	Set(KeyLockTimeout, "0s")
	Set(KeyPropagationLookback, -3)

	s := Snapshot()
	if s.LockTimeout != DefaultLockTimeout {
		t.Errorf("LockTimeout = %v, want %v", s.LockTimeout, DefaultLockTimeout)
	}
	if s.LookbackDays != 0 {
		t.Errorf("LookbackDays = %d, want 0", s.LookbackDays)
	}
	if want := filepath.Join(os.Getenv("DAYBOOK_DIR"), "daybook.db"); s.DBPath != want {
		t.Errorf("DBPath = %q, want %q", s.DBPath, want)
	}
	if s.ReportWeekStart != "wednesday" {
		t.Errorf("ReportWeekStart = %q, want wednesday", s.ReportWeekStart)
	}
}

func TestGetWeekStart(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	tests := []struct {
		value string
		want  string
	}{
		{"Monday", "monday"},
		{" friday ", "friday"},
		{"someday", "wednesday"},
		{"", "wednesday"},
	}
	for _, tt := range tests {
		Set(KeyReportWeekStart, tt.value)
		if got := GetWeekStart(); got != tt.want {
			t.Errorf("GetWeekStart() with %q = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestGetKanbanColumnsDedup(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}
	Set(KeyKanbanColumns, []string{"A", " ", "B", "A"})
	got := GetKanbanColumns()
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("GetKanbanColumns() = %v, want [A B]", got)
	}

	Set(KeyKanbanColumns, []string{})
	if got := GetKanbanColumns(); !reflect.DeepEqual(got, types.DefaultKanbanColumns) {
		t.Errorf("GetKanbanColumns() with empty = %v, want %v", got, types.DefaultKanbanColumns)
	}
}

func TestTelemetrySettings(t *testing.T) {
	t.Setenv("DAYBOOK_DIR", t.TempDir())
	t.Setenv("DAYBOOK_TELEMETRY_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tel := Snapshot().Telemetry
	if !tel.Enabled || tel.Stdout {
		t.Errorf("Telemetry = %+v, want enabled without stdout", tel)
	}
	if tel.Endpoint != "collector:4318" {
		t.Errorf("Endpoint = %q, want OTEL_EXPORTER_OTLP_ENDPOINT fallback", tel.Endpoint)
	}
	if tel.MetricInterval != DefaultTelemetryMetricInterval {
		t.Errorf("MetricInterval = %v, want %v", tel.MetricInterval, DefaultTelemetryMetricInterval)
	}

	t.Setenv("DAYBOOK_TELEMETRY_ENDPOINT", "daybook-collector:4318")
	if got := Snapshot().Telemetry.Endpoint; got != "daybook-collector:4318" {
		t.Errorf("Endpoint = %q, want DAYBOOK_TELEMETRY_ENDPOINT to win", got)
	}

	Set(KeyTelemetryMetricInterval, "-1s")
	if got := Snapshot().Telemetry.MetricInterval; got != DefaultTelemetryMetricInterval {
		t.Errorf("negative MetricInterval = %v, want default", got)
	}
}
