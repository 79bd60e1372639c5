package main

import (
	"os"

	"github.com/dailyworkspace/daybook/internal/config"
	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/membership"
	"github.com/dailyworkspace/daybook/internal/propagate"
	"github.com/dailyworkspace/daybook/internal/report"
	"github.com/dailyworkspace/daybook/internal/telemetry"
)

func telemetryConfig(s config.Settings) telemetry.Config {
	return telemetry.Config{
		Enabled:         s.Telemetry.Enabled,
		Stdout:          s.Telemetry.Stdout,
		Endpoint:        s.Telemetry.Endpoint,
		MetricsEndpoint: s.Telemetry.MetricsEndpoint,
		MetricInterval:  s.Telemetry.MetricInterval,
		Writer:          os.Stderr,
	}
}

func propagationOptions(s config.Settings) propagate.Options {
	return propagate.Options{Enabled: s.Propagation, LookbackDays: s.LookbackDays}
}

func newPropagator() *propagate.Propagator {
	return propagate.New(store, propagationOptions(settings))
}

func newEnforcer() *membership.Enforcer {
	return membership.New(store, settings.KanbanColumns)
}

func newReports() *report.Generator {
	start, err := report.ParseWeekday(settings.ReportWeekStart)
	if err != nil {
		debug.Warnf("%v, using %s\n", err, report.DefaultWeekStart)
		start = report.DefaultWeekStart
	}
	return report.New(store, start)
}
