// Package telemetry records event bus activity as OpenTelemetry metrics.
//
// Metrics are disabled by default. When enabled, they're periodically written to the configured writer as JSON, and flushed when the returned shutdown function is called.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"github.com/saylorsolutions/superbus/eventbus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"io"
	"reflect"
	"time"
)

const (
	instrumentationScope = "github.com/saylorsolutions/superbus"
	exportInterval       = 15 * time.Second
)

// ShutdownFunc flushes and stops metric export.
type ShutdownFunc func(ctx context.Context) error

// Init creates a [metric.MeterProvider].
// When enabled is false, a no-op provider is returned and nothing is exported.
func Init(enabled bool, out io.Writer) (metric.MeterProvider, ShutdownFunc, error) {
	if !enabled {
		return metricnoop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}
	if out == nil {
		return nil, nil, errors.New("telemetry: nil metrics writer")
	}
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(exportInterval)),
	))
	return mp, mp.Shutdown, nil
}

// Meter returns the meter used for bus instruments from provider.
func Meter(provider metric.MeterProvider) metric.Meter {
	return provider.Meter(instrumentationScope)
}

var _ eventbus.Recorder = (*Recorder)(nil)

// Recorder is an [eventbus.Recorder] backed by OpenTelemetry instruments.
type Recorder struct {
	posted     metric.Int64Counter
	invoked    metric.Int64Counter
	dead       metric.Int64Counter
	faults     metric.Int64Counter
	drainItems metric.Int64Histogram
}

// NewRecorder creates the bus instruments with meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	if meter == nil {
		return nil, errors.New("telemetry: nil meter")
	}
	var (
		r   Recorder
		err error
	)
	if r.posted, err = meter.Int64Counter("superbus.events.posted",
		metric.WithDescription("Events posted to the bus"),
	); err != nil {
		return nil, err
	}
	if r.invoked, err = meter.Int64Counter("superbus.handlers.invoked",
		metric.WithDescription("Handler invocations"),
	); err != nil {
		return nil, err
	}
	if r.dead, err = meter.Int64Counter("superbus.events.dead",
		metric.WithDescription("Posted values that no handler accepted"),
	); err != nil {
		return nil, err
	}
	if r.faults, err = meter.Int64Counter("superbus.faults",
		metric.WithDescription("Handler failures"),
	); err != nil {
		return nil, err
	}
	if r.drainItems, err = meter.Int64Histogram("superbus.drain.items",
		metric.WithDescription("Deliveries dispatched per drain pass"),
		metric.WithUnit("{delivery}"),
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func eventAttr(eventType reflect.Type) attribute.KeyValue {
	return attribute.String("event.type", eventType.String())
}

func (r *Recorder) Posted(eventType reflect.Type, matched int) {
	r.posted.Add(context.Background(), 1, metric.WithAttributes(
		eventAttr(eventType),
		attribute.Bool("matched", matched > 0),
	))
}

func (r *Recorder) Invoked(eventType reflect.Type) {
	r.invoked.Add(context.Background(), 1, metric.WithAttributes(eventAttr(eventType)))
}

func (r *Recorder) Dead(eventType reflect.Type) {
	r.dead.Add(context.Background(), 1, metric.WithAttributes(eventAttr(eventType)))
}

func (r *Recorder) Faulted(fault *eventbus.Fault) {
	r.faults.Add(context.Background(), 1, metric.WithAttributes(
		eventAttr(reflect.TypeOf(fault.Event)),
		attribute.Bool("panic", errors.Is(fault, eventbus.ErrHandlerPanic)),
	))
}

func (r *Recorder) Drained(items, faults int) {
	r.drainItems.Record(context.Background(), int64(items), metric.WithAttributes(
		attribute.Bool("faulted", faults > 0),
	))
}
