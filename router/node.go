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

// nodeKind discriminates the three node kinds of the route tree. The kind is
// an explicit tag rather than a sentinel character embedded in the label, so
// traversal never parses marker syntax out of label text.
type nodeKind uint8

const (
	staticNode nodeKind = iota
	paramNode
	wildcardNode
)

// node is a single node of the compressed prefix tree for one HTTP method.
//
// For static nodes, label is the literal text to consume from the path.
// For param nodes, label is the parameter name (without the ":" marker).
// For wildcard nodes, label is the capture name, possibly empty.
//
// Children: static children are keyed by the first byte of their label, which
// is unique among siblings by construction. A node additionally has at most
// one param child and at most one wildcard child. Wildcard nodes are leaves:
// they consume the entire remaining path.
//
// Each node is owned by exactly one parent. Nodes are created and mutated
// only during the registration phase; after the build/serve hand-off the
// tree is immutable and safe for concurrent readers.
type node[H any] struct {
	kind     nodeKind
	label    string
	children map[byte]*node[H]
	param    *node[H]
	wildcard *node[H]
	route    *Route[H] // bound route, nil for pass-through nodes
}

// insertStatic descends from n consuming the literal run, creating and
// splitting nodes as needed, and returns the node at which the run ends.
func (n *node[H]) insertStatic(run string) *node[H] {
	for run != "" {
		child := n.children[run[0]]
		if child == nil {
			child = &node[H]{kind: staticNode, label: run}
			n.setChild(child)
			return child
		}

		cl := commonPrefixLen(child.label, run)
		if cl < len(child.label) {
			child.split(cl)
		}
		n = child
		run = run[cl:]
	}
	return n
}

// split cuts a static node at the given label offset. A new child inherits
// the remaining suffix together with the node's children, marker slots and
// bound route; the node itself is truncated to the common prefix and becomes
// a pass-through.
func (n *node[H]) split(at int) {
	rest := &node[H]{
		kind:     staticNode,
		label:    n.label[at:],
		children: n.children,
		param:    n.param,
		wildcard: n.wildcard,
		route:    n.route,
	}

	n.label = n.label[:at]
	n.children = map[byte]*node[H]{rest.label[0]: rest}
	n.param = nil
	n.wildcard = nil
	n.route = nil
}

// setChild registers a static child keyed by the first byte of its label.
func (n *node[H]) setChild(child *node[H]) {
	if n.children == nil {
		n.children = make(map[byte]*node[H], 4)
	}
	n.children[child.label[0]] = child
}

// commonPrefixLen returns the length of the longest common prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
