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
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestMetricsProviders(t *testing.T) {
	t.Parallel()

	t.Run("PrometheusDefault", func(t *testing.T) {
		t.Parallel()
		recorder := MustNewMetrics()
		defer recorder.Shutdown(context.Background())

		assert.Equal(t, PrometheusProvider, recorder.Provider())
		h, err := recorder.Handler()
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("Stdout", func(t *testing.T) {
		t.Parallel()
		recorder := MustNewMetrics(WithStdout())
		defer recorder.Shutdown(context.Background())

		assert.Equal(t, StdoutProvider, recorder.Provider())

		// Handler is a Prometheus-only feature.
		_, err := recorder.Handler()
		assert.Error(t, err)
	})

	t.Run("OTLP", func(t *testing.T) {
		t.Parallel()
		recorder := MustNewMetrics(
			WithOTLP("http://localhost:4318"),
			WithExportInterval(time.Hour), // never fires during the test
		)
		defer recorder.Shutdown(context.Background())

		assert.Equal(t, OTLPProvider, recorder.Provider())
	})
}

func TestMetricsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []MetricsOption
	}{
		{"conflicting providers", []MetricsOption{WithPrometheus(), WithStdout()}},
		{"empty service name", []MetricsOption{WithServiceName("")}},
		{"empty service version", []MetricsOption{WithServiceVersion("")}},
		{"empty buckets", []MetricsOption{WithDurationBuckets()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			recorder, err := NewMetrics(tt.opts...)
			assert.Error(t, err)
			assert.Nil(t, recorder)
		})
	}
}

// TestRecordLookupData records lookups through a caller-managed provider with
// a manual reader and verifies the datapoints land on the expected
// instruments. A custom provider is never flushed or shut down by the
// recorder.
func TestRecordLookupData(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	recorder, err := NewMetrics(
		WithMeterProvider(provider),
		WithServiceName("router-test"),
	)
	require.NoError(t, err)

	ctx := context.Background()
	recorder.RecordRegistration(ctx, "GET")
	recorder.RecordLookup(ctx, "GET", "/users/:id", true, 800*time.Nanosecond)
	recorder.RecordLookup(ctx, "GET", "", false, 200*time.Nanosecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make(map[string]bool)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["router.lookup.duration"])
	assert.True(t, names["router.lookup.count"])
	assert.True(t, names["router.routes.registered"])

	// Shutdown leaves the caller-managed provider running.
	require.NoError(t, recorder.Shutdown(ctx))
	var again metricdata.ResourceMetrics
	assert.NoError(t, reader.Collect(ctx, &again))
	require.NoError(t, provider.Shutdown(ctx))
}

// TestPrometheusScrape wires a recorder into a table, performs lookups, and
// scrapes the Prometheus handler.
func TestPrometheusScrape(t *testing.T) {
	t.Parallel()

	recorder := MustNewMetrics(WithServiceName("router-test"))
	defer recorder.Shutdown(context.Background())

	table := MustNew[string](WithMetrics(recorder))
	_, err := table.Add("GET", "/users/:id", "get-user")
	require.NoError(t, err)

	_, ok := table.Find("GET", "/users/42")
	require.True(t, ok)
	_, ok = table.Find("GET", "/nope")
	require.False(t, ok)

	h, err := recorder.Handler()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "router_lookup_count")
	assert.Contains(t, body, "router_lookup_duration")
	assert.Contains(t, body, "router_routes_registered")
}

func TestMetricsShutdownIdempotent(t *testing.T) {
	t.Parallel()

	recorder := MustNewMetrics(WithStdout(), WithExportInterval(time.Hour))

	ctx := context.Background()
	require.NoError(t, recorder.ForceFlush(ctx))
	require.NoError(t, recorder.Shutdown(ctx))
	require.NoError(t, recorder.Shutdown(ctx))

	// After shutdown, flush is a no-op rather than an error.
	assert.NoError(t, recorder.ForceFlush(ctx))
}

func TestEventHandler(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var events []Event
	capture := func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}

	// An OTLP recorder without an endpoint falls back to the default and
	// warns about it.
	recorder := MustNewMetrics(
		WithOTLP(""),
		WithExportInterval(time.Hour),
		WithEventHandler(capture),
	)
	defer recorder.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	var sawWarning bool
	for _, e := range events {
		if e.Type == EventWarning {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning, "expected a default-endpoint warning event")
}

func TestDefaultEventHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := DefaultEventHandler(logger)
	handler(Event{Type: EventError, Message: "export failed", Args: []any{"attempt", 3}})
	handler(Event{Type: EventDebug, Message: "provider ready"})

	out := buf.String()
	assert.Contains(t, out, "export failed")
	assert.Contains(t, out, "attempt=3")
	assert.Contains(t, out, "provider ready")

	// A nil logger yields a usable no-op handler.
	assert.NotPanics(t, func() {
		DefaultEventHandler(nil)(Event{Type: EventInfo, Message: "ignored"})
	})
}

// TestFindSpans verifies lookup spans carry the matched pattern, never the
// raw request path.
func TestFindSpans(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(&buf),
		stdouttrace.WithPrettyPrint(),
	)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	table := MustNew[string](WithTracerProvider(tp))
	_, err = table.Add("GET", "/users/:id", "get-user")
	require.NoError(t, err)

	m, ok := table.FindContext(context.Background(), "GET", "/users/42")
	require.True(t, ok)
	require.Equal(t, "get-user", m.Handler)

	_, ok = table.FindContext(context.Background(), "GET", "/missing")
	require.False(t, ok)

	require.NoError(t, tp.ForceFlush(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "router.find")
	assert.Contains(t, out, "/users/:id")
	assert.NotContains(t, out, "/users/42", "raw paths must not become span attributes")
	assert.Contains(t, out, "router.matched")
}
