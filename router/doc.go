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

// Package router implements the path-matching engine of deno-spring: a
// per-HTTP-method compressed prefix tree mapping a request method and path to
// a previously registered handler, with captured parameters.
//
// The engine is transport-agnostic. It consumes a stream of
// (method, pattern, handler) registrations and answers lookups; request and
// response handling, middleware, and templates live in the surrounding
// framework.
//
// # Patterns
//
//   - Static segments match literally: "/users/new"
//   - ":name" captures one path component: "/users/:id"
//   - A trailing "*name" captures the rest of the path, slashes included:
//     "/files/*path" (the name may be omitted: "/files/*")
//
// At every branch point the static child is preferred over the parameter
// child, which is preferred over the wildcard; the search backtracks across
// alternatives until a bound route is found.
//
// # Phases
//
// A table goes through two phases. During registration (startup,
// single-threaded) Add builds the trees, splitting nodes in place; every
// malformed or colliding pattern fails Add deterministically, so route
// defects surface before traffic. After registration the tree is immutable
// and Find may be called from any number of goroutines without coordination.
//
// # Quick start
//
//	t := router.MustNew[http.HandlerFunc]()
//	t.Add("GET", "/users/:id", getUser, router.WithMeta("view", "user.html"))
//	t.Add("GET", "/assets/*path", serveAsset)
//	t.Freeze()
//
//	m, ok := t.Find("GET", "/users/42")
//	if !ok {
//	    // no route: translate into a 404 upstream
//	}
//	m.Handler(w, req) // m.Params.Value("id") == "42"
//
// # Observability
//
// Lookup metrics are recorded through OpenTelemetry, with Prometheus, OTLP
// and stdout providers:
//
//	rec := router.MustNewMetrics(router.WithPrometheus())
//	t := router.MustNew[http.HandlerFunc](router.WithMetrics(rec))
package router
