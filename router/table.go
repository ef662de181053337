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
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Route is one registration entry: the method, the original pattern, the
// handler bound to it, and auxiliary metadata the surrounding framework
// associates with the route (e.g. a view-template name).
//
// The ID is assigned at registration time and is stable for the lifetime of
// the table, so callers can index their own per-route state by it. A matched
// terminal carries a pointer to its Route, making metadata recovery after a
// lookup O(1) instead of a scan over all registered routes.
type Route[H any] struct {
	ID      int
	Method  string
	Pattern string
	Handler H

	meta map[string]string
}

// Meta returns the metadata value stored under key.
func (r *Route[H]) Meta(key string) (string, bool) {
	v, ok := r.meta[key]
	return v, ok
}

// SetMeta stores a metadata value on the route. Like registration itself,
// this must only be called during the build phase.
func (r *Route[H]) SetMeta(key, value string) {
	if r.meta == nil {
		r.meta = make(map[string]string, 2)
	}
	r.meta[key] = value
}

// RouteOption configures a route at registration time.
type RouteOption func(meta map[string]string)

// WithMeta attaches a metadata key/value pair to the route being registered.
func WithMeta(key, value string) RouteOption {
	return func(meta map[string]string) {
		meta[key] = value
	}
}

// Match is the result of a successful lookup: the bound handler, its
// registration entry, and the parameters captured from the path.
type Match[H any] struct {
	Handler H
	Route   *Route[H]
	Params  Params
}

// Table maps a request method and path to a previously registered handler.
// It owns one compressed prefix tree per distinct method string; methods are
// case-sensitive and fully independent: a pattern registered under one
// method is invisible to every other.
//
// A Table has two phases with different sharing rules. During the build
// phase, Add is called from a single goroutine and the trees are exclusively
// mutable. Once registration completes (optionally sealed with Freeze), the
// trees are immutable and Find is safe for unlimited concurrent callers
// without coordination.
//
// Example:
//
//	t := router.MustNew[http.HandlerFunc]()
//	t.Add("GET", "/users/:id", getUser)
//	t.Add("GET", "/files/*path", serveFile)
//	t.Freeze()
//
//	if m, ok := t.Find("GET", "/users/42"); ok {
//	    m.Handler(w, req) // m.Params.Value("id") == "42"
//	}
type Table[H any] struct {
	trees  map[string]*tree[H]
	routes []*Route[H] // append-only, in registration order

	metrics *MetricsRecorder
	tracer  trace.Tracer

	frozen atomic.Bool
}

// Option configures a Table.
type Option func(*tableConfig)

// tableConfig collects option state before the generic Table is built.
type tableConfig struct {
	metrics *MetricsRecorder
	tracer  trace.Tracer
}

// WithMetrics attaches a metrics recorder. Registrations and lookups are then
// recorded through it. Pass nil to disable (the default).
func WithMetrics(recorder *MetricsRecorder) Option {
	return func(c *tableConfig) {
		c.metrics = recorder
	}
}

// WithTracerProvider enables per-lookup spans using the given provider.
// Lookups are cheap, so this is intended for debugging route resolution
// rather than steady-state production tracing.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *tableConfig) {
		c.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "github.com/metadream/deno-spring/router"

// New creates an empty route table with optional configuration.
//
// The returned table is ready for registration. Construction itself cannot
// fail today; the error return exists so configuration validation can be
// added without breaking callers, matching the constructor convention used
// across this project.
func New[H any](opts ...Option) (*Table[H], error) {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Table[H]{
		trees:   make(map[string]*tree[H], 4),
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
	}, nil
}

// MustNew is New, panicking on error. Use it when a configuration error
// should abort startup immediately.
func MustNew[H any](opts ...Option) *Table[H] {
	t, err := New[H](opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return t
}

// Add registers pattern under method and binds handler at its terminal.
//
// Patterns start with "/" and may contain ":name" parameters (capturing one
// path component) and a trailing "*name" wildcard (capturing the rest of the
// path, slashes included). Registration order does not matter.
//
// All errors Add returns are deterministic functions of the pattern set:
// ErrInvalidPattern, ErrEmptyParamName, ErrWildcardConflict for syntax,
// ErrDuplicateRoute for an exact pattern collision, ErrParamNameConflict for
// diverging parameter names at one position. Routes are static configuration,
// so any of these is a deployment defect and should abort startup.
func (t *Table[H]) Add(method, pattern string, handler H, opts ...RouteOption) (*Route[H], error) {
	if t.frozen.Load() {
		return nil, fmt.Errorf("%w: %s %s", ErrTableFrozen, method, pattern)
	}

	toks, err := splitPattern(pattern)
	if err != nil {
		return nil, err
	}

	rt := &Route[H]{
		ID:      len(t.routes),
		Method:  method,
		Pattern: pattern,
		Handler: handler,
	}
	if len(opts) > 0 {
		rt.meta = make(map[string]string, len(opts))
		for _, opt := range opts {
			opt(rt.meta)
		}
	}

	tr := t.trees[method]
	if tr == nil {
		tr = newTree[H]()
		t.trees[method] = tr
	}
	if err := tr.insert(toks, rt); err != nil {
		return nil, err
	}

	t.routes = append(t.routes, rt)
	if t.metrics != nil {
		t.metrics.RecordRegistration(context.Background(), method)
	}
	return rt, nil
}

// Freeze seals the table: any later Add fails with ErrTableFrozen. Calling
// Freeze is optional, since completing registration before serving
// establishes the required happens-before edge on its own, but it turns a
// late, racy registration into a deterministic startup error.
func (t *Table[H]) Freeze() {
	t.frozen.Store(true)
}

// Find looks up the handler registered for method and path.
//
// The boolean result distinguishes a match from the normal "no route"
// outcome; Find never fails. The caller is responsible for path
// normalization (e.g. collapsing repeated slashes) before calling.
func (t *Table[H]) Find(method, path string) (Match[H], bool) {
	return t.FindContext(context.Background(), method, path)
}

// FindContext is Find with a caller-supplied context for trace propagation.
// The lookup itself is a pure in-memory computation and does not block; the
// context is never consulted for cancellation.
func (t *Table[H]) FindContext(ctx context.Context, method, path string) (Match[H], bool) {
	var span trace.Span
	if t.tracer != nil {
		ctx, span = t.tracer.Start(ctx, "router.find", trace.WithAttributes(
			attribute.String("http.request.method", method),
		))
		defer span.End()
	}

	var start time.Time
	if t.metrics != nil {
		start = time.Now()
	}

	var m Match[H]
	var params Params // fresh per call, discarded by the caller after use

	tr := t.trees[method]
	if tr != nil {
		if n := tr.search(path, &params); n != nil {
			m = Match[H]{Handler: n.route.Handler, Route: n.route, Params: params}
		}
	}

	matched := m.Route != nil
	if t.metrics != nil {
		pattern := ""
		if matched {
			pattern = m.Route.Pattern
		}
		t.metrics.RecordLookup(ctx, method, pattern, matched, time.Since(start))
	}
	if span != nil {
		if matched {
			// Record the pattern, not the raw path, to keep attribute
			// cardinality bounded.
			span.SetAttributes(
				attribute.String("http.route", m.Route.Pattern),
				attribute.Bool("router.matched", true),
			)
		} else {
			span.SetAttributes(attribute.Bool("router.matched", false))
		}
	}

	return m, matched
}

// Routes returns the registration entries in registration order. The slice
// is shared; callers must not modify it.
func (t *Table[H]) Routes() []*Route[H] {
	return t.routes
}

// Route returns the registration entry with the given ID.
func (t *Table[H]) Route(id int) (*Route[H], bool) {
	if id < 0 || id >= len(t.routes) {
		return nil, false
	}
	return t.routes[id], true
}

// Methods returns the distinct method strings with at least one route.
func (t *Table[H]) Methods() []string {
	methods := make([]string, 0, len(t.trees))
	for m := range t.trees {
		methods = append(methods, m)
	}
	return methods
}
