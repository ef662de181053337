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

// Param is a single captured path parameter.
type Param struct {
	Name  string
	Value string
}

// Params holds the parameters captured during one lookup, in the order they
// appear in the matched pattern.
//
// A fresh Params value is allocated for every Find call and handed to exactly
// one caller. It is never pooled or shared: reusing it across concurrent
// lookups would corrupt bindings.
type Params []Param

// Get returns the value captured under name. The second return value reports
// whether the parameter was captured at all, distinguishing an absent
// parameter from one that captured an empty string.
func (ps Params) Get(name string) (string, bool) {
	for i := range ps {
		if ps[i].Name == name {
			return ps[i].Value, true
		}
	}
	return "", false
}

// Value returns the value captured under name, or "" if absent.
func (ps Params) Value(name string) string {
	v, _ := ps.Get(name)
	return v
}

// Len returns the number of captured parameters.
func (ps Params) Len() int {
	return len(ps)
}

// Map copies the parameters into a freshly allocated map.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for i := range ps {
		m[ps[i].Name] = ps[i].Value
	}
	return m
}

// add appends a binding during tree traversal.
func (ps *Params) add(name, value string) {
	*ps = append(*ps, Param{Name: name, Value: value})
}

// truncate discards bindings introduced by an abandoned branch, so a failed
// descent never leaks captures into the branch tried next.
func (ps *Params) truncate(n int) {
	*ps = (*ps)[:n]
}
