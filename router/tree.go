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

// tree is the compressed prefix tree for a single HTTP method.
//
// Thread safety: insert must only be called during the registration phase,
// before any call to search. Once registration completes, the tree is
// immutable and search is safe for unlimited concurrent callers without
// locking. The only per-call mutable state is the Params value owned by the
// caller.
type tree[H any] struct {
	root *node[H]
}

func newTree[H any]() *tree[H] {
	return &tree[H]{root: &node[H]{kind: staticNode}}
}

// insert adds one parsed pattern to the tree and binds rt at its terminal
// node. The descent matches the longest common prefix between each static
// run and the existing labels, splitting nodes in place where they diverge.
func (t *tree[H]) insert(toks []token, rt *Route[H]) error {
	n := t.root

	for _, tok := range toks {
		switch tok.kind {
		case tokenStatic:
			n = n.insertStatic(tok.text)

		case tokenParam:
			if n.param == nil {
				n.param = &node[H]{kind: paramNode, label: tok.text}
			} else if n.param.label != tok.text {
				return fmt.Errorf("%w: %s %s registers :%s where :%s already exists",
					ErrParamNameConflict, rt.Method, rt.Pattern, tok.text, n.param.label)
			}
			n = n.param

		case tokenWildcard:
			if n.wildcard == nil {
				n.wildcard = &node[H]{kind: wildcardNode, label: tok.text}
			}
			n = n.wildcard
		}
	}

	if n.route != nil {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, rt.Method, rt.Pattern)
	}
	n.route = rt
	return nil
}

// searchState sequences the alternatives a frame still has to offer, in
// fixed precedence order: static child, then param child, then wildcard.
type searchState uint8

const (
	tryStatic searchState = iota
	tryParam
	tryWildcard
	exhausted
)

// frame is one entry of the explicit backtracking stack. A frame represents
// a node whose label (or binding) has already been consumed from the path;
// rest is the remaining suffix and mark is the Params length to restore when
// the frame unwinds.
type frame[H any] struct {
	n     *node[H]
	rest  string
	mark  int
	state searchState
}

// search finds the route bound for path, capturing parameters into ps.
// It returns the matched terminal node, or nil if no route is bound.
//
// The traversal is an iterative depth-first search over the tree with an
// explicit stack, so worst-case stack usage stays bounded regardless of path
// depth. At every branch point the static child is attempted first; if that
// whole sub-path fails to reach a bound route the search backtracks and
// attempts the param child, then the wildcard. The first bound terminal wins.
// Unwinding a frame truncates ps back to the frame's mark, so bindings from
// a failed branch never leak into the alternative tried next.
func (t *tree[H]) search(path string, ps *Params) *node[H] {
	stack := make([]frame[H], 1, 8)
	stack[0] = frame[H]{n: t.root, rest: path}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		switch f.state {
		case tryStatic:
			f.state = tryParam
			if f.rest == "" {
				if f.n.route != nil {
					return f.n
				}
				continue // only a wildcard child can still match
			}
			if c := f.n.children[f.rest[0]]; c != nil && strings.HasPrefix(f.rest, c.label) {
				stack = append(stack, frame[H]{n: c, rest: f.rest[len(c.label):], mark: ps.Len()})
			}

		case tryParam:
			f.state = tryWildcard
			if f.n.param == nil || f.rest == "" {
				continue
			}
			seg := f.rest
			if i := strings.IndexByte(seg, '/'); i >= 0 {
				seg = seg[:i]
			}
			if seg == "" {
				continue // a parameter never captures an empty segment
			}
			mark := ps.Len()
			ps.add(f.n.param.label, seg)
			stack = append(stack, frame[H]{n: f.n.param, rest: f.rest[len(seg):], mark: mark})

		case tryWildcard:
			f.state = exhausted
			w := f.n.wildcard
			if w == nil || w.route == nil {
				continue
			}
			// The wildcard consumes the entire remaining suffix, slashes
			// included; no further descent is possible.
			if w.label != "" {
				ps.add(w.label, f.rest)
			}
			return w

		default:
			// All alternatives failed: unwind, dropping any binding this
			// branch introduced.
			ps.truncate(f.mark)
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}
