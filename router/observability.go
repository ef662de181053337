// Copyright 2026 The Deno-Spring Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultDurationBuckets are histogram boundaries for lookup duration in
// seconds. Lookups are in-memory tree walks, so the buckets cover the
// sub-microsecond to low-millisecond range.
var DefaultDurationBuckets = []float64{
	0.0000005, 0.000001, 0.0000025, 0.000005, 0.00001, 0.000025, 0.00005,
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005,
}

// EventType represents the severity of an internal operational event.
type EventType int

const (
	// EventError indicates an error event (e.g. failed to export metrics).
	EventError EventType = iota
	// EventWarning indicates a warning event.
	EventWarning
	// EventInfo indicates an informational event.
	EventInfo
	// EventDebug indicates a debug event.
	EventDebug
)

// Event is an internal operational event from the observability layer.
type Event struct {
	Type    EventType
	Message string
	Args    []any // slog-style key-value pairs
}

// EventHandler processes internal operational events. Implementations can
// log events, forward them to monitoring systems, or discard them.
type EventHandler func(Event)

// DefaultEventHandler returns an EventHandler that logs events to the given
// slog.Logger. If logger is nil it returns a no-op handler.
func DefaultEventHandler(logger *slog.Logger) EventHandler {
	if logger == nil {
		return func(Event) {}
	}

	return func(e Event) {
		switch e.Type {
		case EventError:
			logger.Error(e.Message, e.Args...)
		case EventWarning:
			logger.Warn(e.Message, e.Args...)
		case EventInfo:
			logger.Info(e.Message, e.Args...)
		case EventDebug:
			logger.Debug(e.Message, e.Args...)
		}
	}
}

// MetricsProvider selects the exporter backing a MetricsRecorder.
type MetricsProvider string

const (
	// PrometheusProvider exposes metrics on a private Prometheus registry
	// served via Handler() (default).
	PrometheusProvider MetricsProvider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP HTTP collector.
	OTLPProvider MetricsProvider = "otlp"
	// StdoutProvider prints metrics to stdout (development/testing).
	StdoutProvider MetricsProvider = "stdout"
)

// MetricsRecorder records route-table metrics through OpenTelemetry.
// All methods are safe for concurrent use.
//
// By default the recorder does NOT set the global OpenTelemetry meter
// provider, so multiple recorders can coexist in one process. Use
// WithGlobalMeterProvider for global registration.
type MetricsRecorder struct {
	meter         metric.Meter
	meterProvider metric.MeterProvider

	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler

	lookupDuration metric.Float64Histogram
	lookupCount    metric.Int64Counter
	routeCount     metric.Int64Counter

	eventHandler EventHandler

	serviceName    string
	serviceVersion string
	otlpEndpoint   string

	durationBuckets []float64
	exportInterval  time.Duration

	provider            MetricsProvider
	providerSetCount    int
	customMeterProvider bool
	registerGlobal      bool

	isShutDown atomic.Bool
}

// MetricsOption configures a MetricsRecorder.
type MetricsOption func(*MetricsRecorder)

// WithPrometheus selects the Prometheus provider. Metrics are registered on
// a private registry; serve them with Handler().
func WithPrometheus() MetricsOption {
	return func(r *MetricsRecorder) {
		r.provider = PrometheusProvider
		r.providerSetCount++
	}
}

// WithOTLP selects the OTLP HTTP provider pushing to the given endpoint,
// e.g. "http://localhost:4318".
func WithOTLP(endpoint string) MetricsOption {
	return func(r *MetricsRecorder) {
		r.provider = OTLPProvider
		r.otlpEndpoint = endpoint
		r.providerSetCount++
	}
}

// WithStdout selects the stdout provider, for development and testing.
func WithStdout() MetricsOption {
	return func(r *MetricsRecorder) {
		r.provider = StdoutProvider
		r.providerSetCount++
	}
}

// WithMeterProvider uses a caller-managed meter provider instead of
// constructing one. The recorder will not flush or shut it down.
func WithMeterProvider(provider metric.MeterProvider) MetricsOption {
	return func(r *MetricsRecorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithGlobalMeterProvider registers the constructed meter provider as the
// OpenTelemetry global default.
func WithGlobalMeterProvider() MetricsOption {
	return func(r *MetricsRecorder) {
		r.registerGlobal = true
	}
}

// WithServiceName sets the service.name attribute attached to all metrics.
func WithServiceName(name string) MetricsOption {
	return func(r *MetricsRecorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version attribute attached to all metrics.
func WithServiceVersion(version string) MetricsOption {
	return func(r *MetricsRecorder) {
		r.serviceVersion = version
	}
}

// WithExportInterval sets the export interval for push-based providers
// (OTLP, stdout). Default: 30s.
func WithExportInterval(interval time.Duration) MetricsOption {
	return func(r *MetricsRecorder) {
		r.exportInterval = interval
	}
}

// WithDurationBuckets overrides the lookup-duration histogram boundaries.
func WithDurationBuckets(buckets ...float64) MetricsOption {
	return func(r *MetricsRecorder) {
		r.durationBuckets = buckets
	}
}

// WithEventHandler sets the handler for internal operational events.
func WithEventHandler(handler EventHandler) MetricsOption {
	return func(r *MetricsRecorder) {
		r.eventHandler = handler
	}
}

// WithLogger is shorthand for WithEventHandler(DefaultEventHandler(logger)).
func WithLogger(logger *slog.Logger) MetricsOption {
	return func(r *MetricsRecorder) {
		r.eventHandler = DefaultEventHandler(logger)
	}
}

// NewMetrics creates a MetricsRecorder with the given options.
// For a version that panics on error, use MustNewMetrics.
func NewMetrics(opts ...MetricsOption) (*MetricsRecorder, error) {
	r := &MetricsRecorder{
		serviceName:     "deno-spring",
		serviceVersion:  "1.0.0",
		provider:        PrometheusProvider,
		exportInterval:  30 * time.Second,
		durationBuckets: DefaultDurationBuckets,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.initializeProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return r, nil
}

// MustNewMetrics is NewMetrics, panicking on error.
func MustNewMetrics(opts ...MetricsOption) *MetricsRecorder {
	r, err := NewMetrics(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNewMetrics: %v", err))
	}
	return r
}

// validate checks that the configuration is consistent.
func (r *MetricsRecorder) validate() error {
	if r.providerSetCount > 1 {
		return fmt.Errorf("conflicting provider options: only one of WithPrometheus, WithOTLP, or WithStdout can be used")
	}
	if r.serviceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if r.serviceVersion == "" {
		return fmt.Errorf("service version cannot be empty")
	}
	if len(r.durationBuckets) == 0 {
		return fmt.Errorf("duration buckets cannot be empty")
	}
	if r.exportInterval < time.Second {
		r.emitWarning("Export interval is very low, may cause high CPU usage", "interval", r.exportInterval)
	}
	if r.provider == OTLPProvider && r.otlpEndpoint == "" {
		r.emitWarning("OTLP endpoint not specified, will use default", "default", "http://localhost:4318")
		r.otlpEndpoint = "http://localhost:4318"
	}
	return nil
}

// initializeInstruments creates the engine's instruments on the meter.
func (r *MetricsRecorder) initializeInstruments() error {
	var err error

	r.lookupDuration, err = r.meter.Float64Histogram(
		"router.lookup.duration",
		metric.WithDescription("Route lookup duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create lookup duration histogram: %w", err)
	}

	r.lookupCount, err = r.meter.Int64Counter(
		"router.lookup.count",
		metric.WithDescription("Total route lookups by method and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create lookup counter: %w", err)
	}

	r.routeCount, err = r.meter.Int64Counter(
		"router.routes.registered",
		metric.WithDescription("Total routes registered by method"),
	)
	if err != nil {
		return fmt.Errorf("failed to create route counter: %w", err)
	}

	return nil
}

// RecordLookup records one Find call. pattern is the matched route pattern
// ("" on a miss); the raw request path is deliberately never recorded, to
// keep attribute cardinality bounded.
func (r *MetricsRecorder) RecordLookup(ctx context.Context, method, pattern string, matched bool, elapsed time.Duration) {
	outcome := "miss"
	route := "_no_route"
	if matched {
		outcome = "match"
		route = pattern
	}

	attrs := metric.WithAttributes(
		attribute.String("service.name", r.serviceName),
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.String("router.outcome", outcome),
	)
	r.lookupCount.Add(ctx, 1, attrs)
	r.lookupDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordRegistration records one successful Add call.
func (r *MetricsRecorder) RecordRegistration(ctx context.Context, method string) {
	r.routeCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service.name", r.serviceName),
		attribute.String("http.request.method", method),
	))
}

// Handler returns the Prometheus metrics http.Handler. It is only available
// with the Prometheus provider.
func (r *MetricsRecorder) Handler() (http.Handler, error) {
	if r.provider != PrometheusProvider || r.prometheusHandler == nil {
		return nil, fmt.Errorf("handler only available with Prometheus provider, current provider: %s", r.provider)
	}
	return r.prometheusHandler, nil
}

// Provider returns the configured metrics provider.
func (r *MetricsRecorder) Provider() MetricsProvider {
	return r.provider
}

// ForceFlush immediately exports pending metric data. For the pull-based
// Prometheus provider this is a no-op; metrics are collected when scraped.
func (r *MetricsRecorder) ForceFlush(ctx context.Context) error {
	if r.isShutDown.Load() {
		return nil
	}
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metrics force flush: %w", err)
		}
	}
	return nil
}

// Shutdown flushes and shuts down the meter provider. Idempotent. A
// caller-managed provider (WithMeterProvider) is left untouched.
func (r *MetricsRecorder) Shutdown(ctx context.Context) error {
	if !r.isShutDown.CompareAndSwap(false, true) {
		return nil
	}

	if r.customMeterProvider {
		r.emitDebug("Skipping shutdown of custom meter provider (managed by caller)")
		return nil
	}

	mp, ok := r.meterProvider.(*sdkmetric.MeterProvider)
	if !ok {
		return nil
	}

	if err := mp.ForceFlush(ctx); err != nil {
		r.emitWarning("metrics flush warning", "error", err)
	}
	if err := mp.Shutdown(ctx); err != nil {
		r.emitError("Error shutting down meter provider", "error", err)
		return fmt.Errorf("meter provider shutdown: %w", err)
	}
	return nil
}

// emitError emits an error event if an event handler is configured.
func (r *MetricsRecorder) emitError(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventError, Message: msg, Args: args})
	}
}

// emitWarning emits a warning event if an event handler is configured.
func (r *MetricsRecorder) emitWarning(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventWarning, Message: msg, Args: args})
	}
}

// emitDebug emits a debug event if an event handler is configured.
func (r *MetricsRecorder) emitDebug(msg string, args ...any) {
	if r.eventHandler != nil {
		r.eventHandler(Event{Type: EventDebug, Message: msg, Args: args})
	}
}
