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

import "errors"

var (
	// ErrInvalidPattern indicates that a route pattern is malformed, e.g. it
	// does not start with "/" or continues past a wildcard segment.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrEmptyParamName indicates that a ":" marker is immediately followed
	// by "/" or the end of the pattern.
	ErrEmptyParamName = errors.New("empty parameter name")

	// ErrWildcardConflict indicates that a path segment contains more than
	// one marker, e.g. "/a/*x*y".
	ErrWildcardConflict = errors.New("only one wildcard per path segment")

	// ErrDuplicateRoute indicates that the exact same pattern was registered
	// twice under the same method.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrParamNameConflict indicates that two patterns declare different
	// parameter names at the same tree position, e.g. "/users/:id" and
	// "/users/:uid/posts". Allowing both would make the winning name depend
	// on registration order.
	ErrParamNameConflict = errors.New("conflicting parameter name")

	// ErrTableFrozen indicates that Add was called after Freeze.
	// Registration must complete before the table starts serving lookups.
	ErrTableFrozen = errors.New("route table is frozen")
)
