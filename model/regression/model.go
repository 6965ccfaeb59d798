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
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/common/parallel"
	"github.com/gorse-io/filmify/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const (
	TypeRandomForest = "random_forest"
	TypeLinear       = "linear"
)

type FitConfig struct {
	Jobs    int
	Verbose int
	Logger  *zap.Logger
	// Progress is called after each unit of work (a tree for forests) with
	// the number of finished units and the total. It may be called from
	// several goroutines.
	Progress func(done, total int)
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
		Logger:  log.Logger(),
	}
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetLogger(logger *zap.Logger) *FitConfig {
	config.Logger = logger
	return config
}

func (config *FitConfig) SetProgress(progress func(done, total int)) *FitConfig {
	config.Progress = progress
	return config
}

func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Logger()
	}
	return config
}

// Regressor predicts a real value from a dense feature vector.
type Regressor interface {
	model.Model
	// Fit the model on rows of features x and targets y.
	Fit(ctx context.Context, x [][]float64, y []float64, config *FitConfig) error
	// Predict the target of a single row.
	Predict(x []float64) float64
	// NumFeatures returns the width of rows seen at fit time.
	NumFeatures() int
	// Invalid returns true if the model has not been fitted.
	Invalid() bool
}

// New creates a regressor by its type name.
func New(name string, params model.Params) (Regressor, error) {
	switch name {
	case TypeRandomForest:
		return NewRandomForest(params), nil
	case TypeLinear:
		return NewLinear(params), nil
	}
	return nil, errors.NotSupportedf("regressor %q", name)
}

// GetModelName returns the type name of a regressor.
func GetModelName(m Regressor) string {
	switch m.(type) {
	case *RandomForest:
		return TypeRandomForest
	case *Linear:
		return TypeLinear
	default:
		return reflect.TypeOf(m).String()
	}
}

// BatchPredict predicts rows with a fitted regressor.
func BatchPredict(ctx context.Context, m Regressor, x [][]float64, jobs int) ([]float64, error) {
	if m.Invalid() {
		return nil, errors.NotValidf("predict with an unfitted %s", GetModelName(m))
	}
	if err := checkFeatures(x, m.NumFeatures()); err != nil {
		return nil, errors.Trace(err)
	}
	predictions := make([]float64, len(x))
	err := parallel.For(ctx, len(x), jobs, func(i int) {
		predictions[i] = m.Predict(x[i])
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return predictions, nil
}

// Score returns the coefficient of determination of the predictions of m on
// (x, y). A constant target yields 1 for a perfect fit and 0 otherwise; fewer
// than two samples yields NaN.
func Score(ctx context.Context, m Regressor, x [][]float64, y []float64, jobs int) (float64, error) {
	if len(x) != len(y) {
		return 0, errors.Errorf("found %d rows of features but %d targets", len(x), len(y))
	}
	predictions, err := BatchPredict(ctx, m, x, jobs)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return RSquared(predictions, y), nil
}

// RSquared computes the coefficient of determination.
func RSquared(estimates, values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	if stat.Variance(values, nil) == 0 {
		for i := range values {
			if estimates[i] != values[i] {
				return 0
			}
		}
		return 1
	}
	return stat.RSquaredFrom(estimates, values, nil)
}

func checkFeatures(x [][]float64, numFeatures int) error {
	for i, row := range x {
		if len(row) != numFeatures {
			return errors.Errorf("row %d has %d features, expected %d", i, len(row), numFeatures)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NotValidf("input contains %v at row %d column %d", v, i, j)
			}
		}
	}
	return nil
}

func checkTrainSet(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return errors.NotValidf("empty train set")
	}
	if len(x) != len(y) {
		return errors.Errorf("found %d rows of features but %d targets", len(x), len(y))
	}
	if len(x[0]) == 0 {
		return errors.NotValidf("train set with 0 features")
	}
	if err := checkFeatures(x, len(x[0])); err != nil {
		return errors.Trace(err)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NotValidf("target contains %v at row %d", v, i)
		}
	}
	return nil
}

func logFitDone(config *FitConfig, name string, elapsed time.Duration, samples, features int, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.Int("n_samples", samples),
		zap.Int("n_features", features),
		zap.Duration("fit_time", elapsed),
	}, extra...)
	config.Logger.Info(fmt.Sprintf("fit %s complete", name), fields...)
}
