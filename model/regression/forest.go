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
	"sync/atomic"
	"time"

	"github.com/gorse-io/filmify/base"
	"github.com/gorse-io/filmify/common/parallel"
	"github.com/gorse-io/filmify/model"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RandomForest averages regression trees grown on bootstrap samples.
// Hyper-parameters:
//
//	NEstimators     - The number of trees. Default is 100.
//	MaxDepth        - The maximum depth of a tree, 0 grows until leaves are pure. Default is 0.
//	MinSamplesSplit - The minimum number of samples to split a node. Default is 2.
//	MinSamplesLeaf  - The minimum number of samples in a leaf. Default is 1.
//	MaxFeatures     - The fraction of features considered at each split. Default is 1.
//	RandomState     - The seed of bootstrap sampling and feature sampling. Default is 0.
type RandomForest struct {
	model.BaseModel
	Trees []*Tree
	// Hyper-parameters
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     float64
	// Fitted
	numFeatures int
}

func NewRandomForest(params model.Params) *RandomForest {
	rf := new(RandomForest)
	rf.SetParams(params)
	return rf
}

func (rf *RandomForest) SetParams(params model.Params) {
	rf.BaseModel.SetParams(params)
	rf.nEstimators = rf.Params.GetInt(model.NEstimators, 100)
	rf.maxDepth = rf.Params.GetInt(model.MaxDepth, 0)
	rf.minSamplesSplit = rf.Params.GetInt(model.MinSamplesSplit, 2)
	rf.minSamplesLeaf = rf.Params.GetInt(model.MinSamplesLeaf, 1)
	rf.maxFeatures = rf.Params.GetFloat64(model.MaxFeatures, 1)
}

func (rf *RandomForest) Clear() {
	rf.Trees = nil
	rf.numFeatures = 0
}

func (rf *RandomForest) Invalid() bool {
	return len(rf.Trees) == 0
}

func (rf *RandomForest) NumFeatures() int {
	return rf.numFeatures
}

func (rf *RandomForest) Predict(x []float64) float64 {
	var sum float64
	for _, tree := range rf.Trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(rf.Trees))
}

func (rf *RandomForest) Fit(ctx context.Context, x [][]float64, y []float64, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := checkTrainSet(x, y); err != nil {
		return errors.Trace(err)
	}
	if rf.nEstimators <= 0 {
		return errors.NotValidf("n_estimators %d", rf.nEstimators)
	}
	start := time.Now()
	numFeatures := len(x[0])
	columns := transpose(x)
	treeConfig := treeConfig{
		maxDepth:        rf.maxDepth,
		minSamplesSplit: max(rf.minSamplesSplit, 2),
		minSamplesLeaf:  max(rf.minSamplesLeaf, 1),
		maxFeatures:     max(1, int(rf.maxFeatures*float64(numFeatures))),
	}
	config.Logger.Info("fit random forest",
		zap.Int("n_estimators", rf.nEstimators),
		zap.Int("max_depth", rf.maxDepth),
		zap.Int("max_features", treeConfig.maxFeatures),
		zap.Int("n_jobs", config.Jobs))

	// seeds are drawn up front so that trees do not depend on scheduling
	rf.ResetRandomGenerator()
	seeds := rf.GetRandomGenerator().Seeds(rf.nEstimators)
	trees := make([]*Tree, rf.nEstimators)
	var completed atomic.Int32
	err := parallel.Parallel(ctx, rf.nEstimators, config.Jobs, func(_, jobId int) error {
		rng := base.NewRandomGenerator(seeds[jobId])
		weights := lo.Map(rng.Bootstrap(len(y)), func(count int, _ int) float64 {
			return float64(count)
		})
		trees[jobId] = buildTree(columns, y, weights, treeConfig, rng)
		done := int(completed.Add(1))
		if config.Verbose > 0 && done%config.Verbose == 0 {
			config.Logger.Debug(fmt.Sprintf("fit random forest (%v/%v)", done, rf.nEstimators))
		}
		if config.Progress != nil {
			config.Progress(done, rf.nEstimators)
		}
		return nil
	})
	if err != nil {
		return errors.Annotate(err, "fit random forest")
	}
	rf.Trees = trees
	rf.numFeatures = numFeatures
	logFitDone(config, "random forest", time.Since(start), len(y), numFeatures,
		zap.Int("n_nodes", lo.SumBy(trees, (*Tree).NumNodes)))
	return nil
}
