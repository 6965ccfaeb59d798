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
	"math"
	"time"

	"github.com/gorse-io/filmify/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Linear is a least squares linear model with an intercept. A positive Reg
// adds an L2 penalty on the coefficients (ridge regression).
type Linear struct {
	model.BaseModel
	Coefficients []float64
	Intercept    float64
	reg          float64
}

func NewLinear(params model.Params) *Linear {
	l := new(Linear)
	l.SetParams(params)
	return l
}

func (l *Linear) SetParams(params model.Params) {
	l.BaseModel.SetParams(params)
	l.reg = l.Params.GetFloat64(model.Reg, 0)
}

func (l *Linear) Clear() {
	l.Coefficients = nil
	l.Intercept = 0
}

func (l *Linear) Invalid() bool {
	return l.Coefficients == nil
}

func (l *Linear) NumFeatures() int {
	return len(l.Coefficients)
}

func (l *Linear) Predict(x []float64) float64 {
	return l.Intercept + floats.Dot(l.Coefficients, x)
}

func (l *Linear) Fit(_ context.Context, x [][]float64, y []float64, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := checkTrainSet(x, y); err != nil {
		return errors.Trace(err)
	}
	start := time.Now()
	n, p := len(x), len(x[0])
	columns := transpose(x)
	means := make([]float64, p)
	for j, column := range columns {
		means[j] = stat.Mean(column, nil)
	}
	meanY := stat.Mean(y, nil)

	// solve (XᵀX + λI)β = Xᵀy on centered data
	centered := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			centered.Set(i, j, x[i][j]-means[j])
		}
	}
	targets := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		targets.SetVec(i, y[i]-meanY)
	}
	var gram mat.Dense
	gram.Mul(centered.T(), centered)
	for j := 0; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+l.reg)
	}
	var moment mat.VecDense
	moment.MulVec(centered.T(), targets)
	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &moment); err != nil {
		if err == mat.ErrSingular {
			return errors.NotValidf("singular features, set a positive regularization")
		}
		condition, ok := err.(mat.Condition)
		if !ok {
			return errors.Annotate(err, "solve normal equations")
		}
		config.Logger.Warn("ill-conditioned normal equations", zap.Float64("condition", float64(condition)))
	}
	coefficients := make([]float64, p)
	for j := range coefficients {
		coefficients[j] = beta.AtVec(j)
		if math.IsNaN(coefficients[j]) || math.IsInf(coefficients[j], 0) {
			return errors.NotValidf("singular features, set a positive regularization")
		}
	}
	l.Coefficients = coefficients
	l.Intercept = meanY - floats.Dot(coefficients, means)
	logFitDone(config, "linear model", time.Since(start), n, p, zap.Float64("reg", l.reg))
	return nil
}
