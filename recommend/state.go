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

package recommend

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/filmify/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// State is a stage of the recommender pipeline. States only move forward.
type State int

const (
	StateInitialized State = iota
	StateSplit
	StateTrained
	StateEvaluated
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateSplit:
		return "split"
	case StateTrained:
		return "trained"
	case StateEvaluated:
		return "evaluated"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// FeatureSet is the ordered list of columns fed to the estimator. It is fixed
// when the model is trained and checked against every table it is applied to.
type FeatureSet struct {
	names []string
}

// NewFeatureSet selects the numeric columns of table except target.
func NewFeatureSet(table *dataset.Table, target string) FeatureSet {
	return FeatureSet{names: lo.Without(table.NumericColumns(), target)}
}

func (f FeatureSet) Names() []string {
	return append([]string(nil), f.names...)
}

func (f FeatureSet) Len() int {
	return len(f.names)
}

func (f FeatureSet) String() string {
	return "[" + strings.Join(f.names, ", ") + "]"
}

// Validate checks that table provides every feature as a numeric column.
// Extra columns are ignored.
func (f FeatureSet) Validate(table *dataset.Table) error {
	missing := mapset.NewSet(f.names...).Difference(mapset.NewSet(table.ColumnNames()...))
	if missing.Cardinality() > 0 {
		return errors.NotFoundf("feature columns %v", lo.Filter(f.names, func(name string, _ int) bool {
			return missing.Contains(name)
		}))
	}
	numeric := mapset.NewSet(table.NumericColumns()...)
	for _, name := range f.names {
		if !numeric.Contains(name) {
			return errors.NotValidf("non-numeric feature column %s", name)
		}
	}
	return nil
}

// Matrix extracts feature rows from table.
func (f FeatureSet) Matrix(table *dataset.Table) ([][]float64, error) {
	if err := f.Validate(table); err != nil {
		return nil, errors.Trace(err)
	}
	return table.Matrix(f.names)
}
