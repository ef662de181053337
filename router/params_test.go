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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	t.Parallel()

	var ps Params
	assert.Equal(t, 0, ps.Len())
	assert.Empty(t, ps.Map())

	ps.add("id", "42")
	ps.add("slug", "intro")

	v, ok := ps.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = ps.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "", ps.Value("missing"))

	assert.Equal(t, map[string]string{"id": "42", "slug": "intro"}, ps.Map())

	ps.truncate(1)
	assert.Equal(t, 1, ps.Len())
	assert.Equal(t, "42", ps.Value("id"))
	assert.Equal(t, "", ps.Value("slug"))
}

// A pattern may reuse a name at different depths (e.g. /a/:x/b/:x); Get
// returns the first binding in capture order.
func TestParamsDuplicateName(t *testing.T) {
	t.Parallel()

	var ps Params
	ps.add("x", "outer")
	ps.add("x", "inner")

	assert.Equal(t, "outer", ps.Value("x"))
	assert.Equal(t, 2, ps.Len())
}
