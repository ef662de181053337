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
	"fmt"
	"strings"
)

// tokenKind discriminates the three segment kinds of the pattern grammar:
//
//	pattern := "/" segment*
//	segment := literal-run | ":" name | "*" [name]
type tokenKind uint8

const (
	tokenStatic tokenKind = iota
	tokenParam
	tokenWildcard
)

// token is one parsed pattern segment. text holds the literal run for static
// tokens and the (possibly empty, for wildcards) name otherwise.
type token struct {
	kind tokenKind
	text string
}

// splitPattern decomposes a route pattern left-to-right into static runs and
// marker segments. All syntax violations are rejected here, at registration
// time; lookup never sees a malformed tree.
func splitPattern(pattern string) ([]token, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}

	toks := make([]token, 0, 4)
	rest := pattern

	for rest != "" {
		i := strings.IndexAny(rest, ":*")
		if i < 0 {
			toks = append(toks, token{kind: tokenStatic, text: rest})
			break
		}
		if i > 0 {
			toks = append(toks, token{kind: tokenStatic, text: rest[:i]})
		}

		marker := rest[i]
		rest = rest[i+1:]

		switch marker {
		case ':':
			// The name is the run of characters up to the next slash.
			name := rest
			if j := strings.IndexByte(rest, '/'); j >= 0 {
				name = rest[:j]
			}
			if name == "" {
				return nil, fmt.Errorf("%w: %q", ErrEmptyParamName, pattern)
			}
			if strings.ContainsAny(name, ":*") {
				return nil, fmt.Errorf("%w: %q", ErrWildcardConflict, pattern)
			}
			toks = append(toks, token{kind: tokenParam, text: name})
			rest = rest[len(name):]

		case '*':
			// A wildcard consumes everything to the end of the path, so it
			// must be the final token of the pattern.
			name := rest
			if strings.ContainsAny(name, ":*") {
				return nil, fmt.Errorf("%w: %q", ErrWildcardConflict, pattern)
			}
			if strings.ContainsRune(name, '/') {
				return nil, fmt.Errorf("%w: %q has segments after a wildcard", ErrInvalidPattern, pattern)
			}
			toks = append(toks, token{kind: tokenWildcard, text: name})
			rest = ""
		}
	}

	return toks, nil
}
