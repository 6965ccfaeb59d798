// Copyright 2026 gorse Project Authors
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

package regression

import (
	"context"
	"testing"

	"github.com/gorse-io/filmify/base"
	"github.com/gorse-io/filmify/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestLinear(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x := make([][]float64, 100)
	y := make([]float64, 100)
	for i := range x {
		x[i] = []float64{rng.Float64(), rng.Float64() * 10}
		y[i] = 2*x[i][0] - 0.5*x[i][1] + 3
	}
	m := NewLinear(nil)
	assert.True(t, m.Invalid())
	assert.NoError(t, m.Fit(context.Background(), x, y, nil))
	assert.False(t, m.Invalid())
	assert.Equal(t, 2, m.NumFeatures())
	assert.InDeltaSlice(t, []float64{2, -0.5}, m.Coefficients, 1e-9)
	assert.InDelta(t, 3, m.Intercept, 1e-9)
	assert.InDelta(t, 4.5, m.Predict([]float64{1, 1}), 1e-9)

	m.Clear()
	assert.True(t, m.Invalid())
}

func TestLinearRidge(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{2, 4, 6, 8}
	plain := NewLinear(nil)
	assert.NoError(t, plain.Fit(context.Background(), x, y, nil))
	ridge := NewLinear(model.Params{model.Reg: 5})
	assert.NoError(t, ridge.Fit(context.Background(), x, y, nil))
	// centered gram is 5, so the slope shrinks from 2 to 1
	assert.InDelta(t, 2, plain.Coefficients[0], 1e-9)
	assert.InDelta(t, 1, ridge.Coefficients[0], 1e-9)
	assert.InDelta(t, 2.5, ridge.Intercept, 1e-9)
}

func TestLinearSingular(t *testing.T) {
	x := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	y := []float64{1, 2, 3}
	err := NewLinear(nil).Fit(context.Background(), x, y, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	// regularization makes it solvable
	m := NewLinear(model.Params{model.Reg: 1})
	assert.NoError(t, m.Fit(context.Background(), x, y, nil))
	assert.InDelta(t, 2, m.Predict([]float64{1, 1}), 1e-9)
}
