package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dailyworkspace/daybook/internal/types"
)

// Config keys
const (
	KeyDB                  = "db"
	KeyListen              = "listen"
	KeyAllowRemote         = "allow-remote"
	KeyJSON                = "json"
	KeyLockTimeout         = "lock-timeout"
	KeyEventLog            = "event-log"
	KeyImportMaxBytes      = "import.max-bytes"
	KeyPropagationEnabled  = "propagation.enabled"
	KeyPropagationLookback = "propagation.lookback-days"
	KeyReportWeekStart     = "report.week-start"
	KeyKanbanColumns       = "kanban.columns"

	KeyTelemetryEnabled         = "telemetry.enabled"
	KeyTelemetryStdout          = "telemetry.stdout"
	KeyTelemetryEndpoint        = "telemetry.endpoint"
	KeyTelemetryMetricsEndpoint = "telemetry.metrics-endpoint"
	KeyTelemetryMetricInterval  = "telemetry.metric-interval"
)

// Defaults
const (
	DefaultListen         = "127.0.0.1:8000"
	DefaultLockTimeout    = 30 * time.Second
	DefaultImportMaxBytes = 64 << 20
	DefaultWeekStart      = "wednesday"

	DefaultTelemetryMetricInterval = 30 * time.Second
)

func registerDefaults() {
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyAllowRemote, false)
	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeyLockTimeout, DefaultLockTimeout.String())
	v.SetDefault(KeyEventLog, false)
	v.SetDefault(KeyImportMaxBytes, DefaultImportMaxBytes)
	v.SetDefault(KeyPropagationEnabled, true)
	v.SetDefault(KeyPropagationLookback, 0)
	v.SetDefault(KeyReportWeekStart, DefaultWeekStart)
	v.SetDefault(KeyKanbanColumns, types.DefaultKanbanColumns)
	v.SetDefault(KeyTelemetryEnabled, false)
	v.SetDefault(KeyTelemetryStdout, false)
	v.SetDefault(KeyTelemetryEndpoint, "")
	v.SetDefault(KeyTelemetryMetricsEndpoint, "")
	v.SetDefault(KeyTelemetryMetricInterval, DefaultTelemetryMetricInterval.String())
}

// bindEnvAliases lets the standard OTel variables feed the collector
// endpoints. A DAYBOOK_TELEMETRY_* variable wins when both are set.
func bindEnvAliases() {
	_ = v.BindEnv(KeyTelemetryEndpoint, "DAYBOOK_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv(KeyTelemetryMetricsEndpoint, "DAYBOOK_TELEMETRY_METRICS_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
}

// Settings is a typed snapshot of the configuration.
type Settings struct {
	DBPath          string        `json:"db" yaml:"db"`
	Listen          string        `json:"listen" yaml:"listen"`
	AllowRemote     bool          `json:"allow_remote" yaml:"allow-remote"`
	JSON            bool          `json:"json" yaml:"json"`
	LockTimeout     time.Duration `json:"lock_timeout" yaml:"lock-timeout"`
	EventLog        bool          `json:"event_log" yaml:"event-log"`
	ImportMaxBytes  int64         `json:"import_max_bytes" yaml:"import-max-bytes"`
	Propagation     bool          `json:"propagation_enabled" yaml:"propagation-enabled"`
	LookbackDays    int           `json:"propagation_lookback_days" yaml:"propagation-lookback-days"`
	ReportWeekStart string        `json:"report_week_start" yaml:"report-week-start"`
	KanbanColumns   []string      `json:"kanban_columns" yaml:"kanban-columns"`
	Telemetry       Telemetry     `json:"telemetry" yaml:"telemetry"`
}

// Telemetry holds the telemetry.* settings.
type Telemetry struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Stdout          bool          `json:"stdout" yaml:"stdout"`
	Endpoint        string        `json:"endpoint" yaml:"endpoint"`
	MetricsEndpoint string        `json:"metrics_endpoint" yaml:"metrics-endpoint"`
	MetricInterval  time.Duration `json:"metric_interval" yaml:"metric-interval"`
}

// Snapshot returns the current configuration with defaults resolved.
func Snapshot() Settings {
	s := Settings{
		DBPath:          GetDBPath(),
		Listen:          GetString(KeyListen),
		AllowRemote:     GetBool(KeyAllowRemote),
		JSON:            GetBool(KeyJSON),
		LockTimeout:     GetDuration(KeyLockTimeout),
		EventLog:        GetBool(KeyEventLog),
		ImportMaxBytes:  GetInt64(KeyImportMaxBytes),
		Propagation:     GetBool(KeyPropagationEnabled),
		LookbackDays:    GetInt(KeyPropagationLookback),
		ReportWeekStart: GetWeekStart(),
		KanbanColumns:   GetKanbanColumns(),
		Telemetry: Telemetry{
			Enabled:         GetBool(KeyTelemetryEnabled),
			Stdout:          GetBool(KeyTelemetryStdout),
			Endpoint:        strings.TrimSpace(GetString(KeyTelemetryEndpoint)),
			MetricsEndpoint: strings.TrimSpace(GetString(KeyTelemetryMetricsEndpoint)),
			MetricInterval:  GetDuration(KeyTelemetryMetricInterval),
		},
	}
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.LockTimeout <= 0 {
		s.LockTimeout = DefaultLockTimeout
	}
	if s.ImportMaxBytes <= 0 {
		s.ImportMaxBytes = DefaultImportMaxBytes
	}
	if s.LookbackDays < 0 {
		s.LookbackDays = 0
	}
	if s.Telemetry.MetricInterval <= 0 {
		s.Telemetry.MetricInterval = DefaultTelemetryMetricInterval
	}
	return s
}

// DataDir is the directory holding the default database and event log.
func DataDir() string {
	if dir := os.Getenv("DAYBOOK_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".daybook"
	}
	return filepath.Join(home, ".daybook")
}

// GetDBPath returns the configured database path, or DataDir()/daybook.db.
func GetDBPath() string {
	if p := GetString(KeyDB); p != "" {
		return p
	}
	return filepath.Join(DataDir(), "daybook.db")
}

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// GetWeekStart returns the configured report week start as a lowercase
// weekday name. Invalid values log a warning and fall back to the default.
//
// Config key: report.week-start
func GetWeekStart() string {
	value := strings.ToLower(strings.TrimSpace(GetString(KeyReportWeekStart)))
	if value == "" {
		return DefaultWeekStart
	}
	for _, d := range weekdays {
		if value == d {
			return d
		}
	}
	fmt.Fprintf(os.Stderr, "Warning: invalid report.week-start %q in config, using default %q\n", value, DefaultWeekStart)
	return DefaultWeekStart
}

// GetKanbanColumns returns the configured Kanban column names, dropping
// blanks and duplicates. An empty result selects the defaults.
//
// Config key: kanban.columns
func GetKanbanColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, c := range GetStringSlice(KeyKanbanColumns) {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return append([]string(nil), types.DefaultKanbanColumns...)
	}
	return cols
}
