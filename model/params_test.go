// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Copy(t *testing.T) {
	// Create parameters
	a := Params{
		NEstimators: 1,
		MaxFeatures: 0.1,
		RandomState: 0,
	}
	// Create copy
	b := a.Copy()
	b[NEstimators] = 2
	b[MaxFeatures] = 0.2
	b[RandomState] = 1
	// Check original parameters
	assert.Equal(t, 1, a.GetInt(NEstimators, -1))
	assert.Equal(t, 0.1, a.GetFloat64(MaxFeatures, -0.1))
	assert.Equal(t, int64(0), a.GetInt64(RandomState, -1))
	// Check copy parameters
	assert.Equal(t, 2, b.GetInt(NEstimators, -1))
	assert.Equal(t, 0.2, b.GetFloat64(MaxFeatures, -0.1))
	assert.Equal(t, int64(1), b.GetInt64(RandomState, -1))
}

func TestParams_GetFloat64(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, 0.1, p.GetFloat64(Reg, 0.1))
	// Normal case
	p[Reg] = 1.0
	assert.Equal(t, 1.0, p.GetFloat64(Reg, 0.1))
	// Wrong type case
	p[Reg] = 1
	assert.Equal(t, 1.0, p.GetFloat64(Reg, 0.1))
	p[Reg] = "hello"
	assert.Equal(t, 0.1, p.GetFloat64(Reg, 0.1))
}

func TestParams_GetInt(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, -1, p.GetInt(MaxDepth, -1))
	// Normal case
	p[MaxDepth] = 0
	assert.Equal(t, 0, p.GetInt(MaxDepth, -1))
	// Wrong type case
	p[MaxDepth] = "hello"
	assert.Equal(t, -1, p.GetInt(MaxDepth, -1))
}

func TestParams_GetInt64(t *testing.T) {
	p := Params{}
	// Empty case
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
	// Normal case
	p[RandomState] = int64(0)
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	// Wrong type case
	p[RandomState] = 0
	assert.Equal(t, int64(0), p.GetInt64(RandomState, -1))
	p[RandomState] = "hello"
	assert.Equal(t, int64(-1), p.GetInt64(RandomState, -1))
}

func TestParams_Overwrite(t *testing.T) {
	a := Params{NEstimators: 10, MaxDepth: 3}
	b := a.Overwrite(Params{MaxDepth: 5, Reg: 0.5})
	assert.Equal(t, Params{NEstimators: 10, MaxDepth: 5, Reg: 0.5}, b)
	assert.Equal(t, 3, a.GetInt(MaxDepth, -1))
	assert.JSONEq(t, `{"MaxDepth":5,"NEstimators":10,"Reg":0.5}`, b.ToString())
}
