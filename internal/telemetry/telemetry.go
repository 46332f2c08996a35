// Package telemetry holds the OpenTelemetry instruments recorded while
// scoring the catalog. Instruments are created on the global meter provider;
// with no provider installed they are no-ops.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every instrument in this package.
const MeterName = "github.com/euroalt/trustscore"

// Metrics holds scoring instruments.
type Metrics struct {
	EntriesScored metric.Int64Counter
	Flags         metric.Int64Counter
	CapsApplied   metric.Int64Counter
	Score         metric.Float64Histogram
	RunDuration   metric.Float64Histogram
	Reloads       metric.Int64Counter
}

// New creates the instruments on meter. A nil meter uses the global provider.
func New(meter metric.Meter) Metrics {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	scored, _ := meter.Int64Counter("trustscore_entries_scored_total",
		metric.WithDescription("Entries scored, by base class and status."))
	flags, _ := meter.Int64Counter("trustscore_flags_total",
		metric.WithDescription("Editorial-review flags raised, by code."))
	caps, _ := meter.Int64Counter("trustscore_caps_applied_total",
		metric.WithDescription("Scores bound by a class or ad-surveillance cap."))
	score, _ := meter.Float64Histogram("trustscore_final_score",
		metric.WithDescription("Computed final score on the 0-100 scale."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100))
	dur, _ := meter.Float64Histogram("trustscore_run_duration_seconds",
		metric.WithDescription("Wall time of a full catalog scoring run."),
		metric.WithUnit("s"))
	reloads, _ := meter.Int64Counter("trustscore_reloads_total",
		metric.WithDescription("Data directory reloads, by outcome."))
	return Metrics{
		EntriesScored: scored,
		Flags:         flags,
		CapsApplied:   caps,
		Score:         score,
		RunDuration:   dur,
		Reloads:       reloads,
	}
}

// RecordEntry records one scored entry.
func (m Metrics) RecordEntry(ctx context.Context, class, status string, finalScore100 float64, capped bool, flagCodes []string) {
	if m.EntriesScored == nil {
		return
	}
	m.EntriesScored.Add(ctx, 1, metric.WithAttributes(
		attribute.String("base_class", class),
		attribute.String("status", status),
	))
	m.Score.Record(ctx, finalScore100, metric.WithAttributes(attribute.String("base_class", class)))
	if capped {
		m.CapsApplied.Add(ctx, 1, metric.WithAttributes(attribute.String("base_class", class)))
	}
	for _, code := range flagCodes {
		m.Flags.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
	}
}

// RecordRun records the duration of a scoring run over n entries.
func (m Metrics) RecordRun(ctx context.Context, n int, d time.Duration) {
	if m.RunDuration == nil {
		return
	}
	m.RunDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Int("entries", n)))
}

// RecordReload records a data directory reload attempt.
func (m Metrics) RecordReload(ctx context.Context, err error) {
	if m.Reloads == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
