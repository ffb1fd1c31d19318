package flowmix

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Logger wraps a zerolog.Logger. The zero value is a valid, silent Logger:
// a [Library] built without [WithLogger] never allocates a real sink and
// pays nothing for the debug/info calls Batch, Page and Sequence make.
type Logger struct {
	zl      zerolog.Logger
	enabled bool
}

// NewLogger wraps zl.
func NewLogger(zl zerolog.Logger) Logger {
	return Logger{zl: zl, enabled: true}
}

// NewConsoleLogger creates a Logger writing human-readable output to
// stderr at the given level.
func NewConsoleLogger(level zerolog.Level) Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	return Logger{zl: zl, enabled: true}
}

func (l Logger) debug(component string, fields map[string]any) {
	if !l.enabled {
		return
	}
	ev := l.zl.Debug().Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("settled")
}

func (l Logger) info(component string, fields map[string]any) {
	if !l.enabled {
		return
	}
	ev := l.zl.Info().Str("component", component)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("done")
}

// Tracer wraps an OpenTelemetry tracer, used to open one span per
// Batch/Page/Sequence/ReadStream invocation. The zero value is a valid
// no-op Tracer.
type Tracer struct {
	tr trace.Tracer
}

// NewTracer wraps tr.
func NewTracer(tr trace.Tracer) Tracer {
	return Tracer{tr: tr}
}

// start opens a span named name, returning a func that records attrs and
// ends the span. When t is the zero value, both are no-ops.
func (t Tracer) start(name string) func(attrs ...attribute.KeyValue) {
	if t.tr == nil {
		return func(...attribute.KeyValue) {}
	}
	_, span := t.tr.Start(context.Background(), name)
	return func(attrs ...attribute.KeyValue) {
		span.SetAttributes(attrs...)
		span.End()
	}
}

// Meter wraps OpenTelemetry instruments recording combinator outcomes: a
// duration histogram and a succeeded/failed counter, one pair shared across
// Batch, Page, Sequence and ReadStream calls, distinguished by a
// "component" attribute. The zero value is a valid no-op Meter.
type Meter struct {
	duration metric.Float64Histogram
	outcomes metric.Int64Counter
}

// NewMeter builds instruments from m. Errors constructing an instrument are
// treated as "metrics disabled" rather than fatal, matching OpenTelemetry's
// own noop-on-error convention.
func NewMeter(m metric.Meter) Meter {
	duration, _ := m.Float64Histogram(
		"flowmix.duration",
		metric.WithDescription("duration of a batch/page/sequence/stream_read call"),
		metric.WithUnit("s"),
	)
	outcomes, _ := m.Int64Counter(
		"flowmix.outcomes",
		metric.WithDescription("count of succeeded/failed elements processed"),
	)
	return Meter{duration: duration, outcomes: outcomes}
}

func (m Meter) record(component string, d time.Duration, succeeded, failed int64) {
	if m.duration == nil {
		return
	}
	ctx := context.Background()
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("component", component)))
	if succeeded > 0 {
		m.outcomes.Add(ctx, succeeded, metric.WithAttributes(
			attribute.String("component", component),
			attribute.String("outcome", "succeeded"),
		))
	}
	if failed > 0 {
		m.outcomes.Add(ctx, failed, metric.WithAttributes(
			attribute.String("component", component),
			attribute.String("outcome", "failed"),
		))
	}
}
