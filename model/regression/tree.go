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
	"cmp"
	"math"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/gorse-io/filmify/base"
)

// minImpurity is the variance below which a node is treated as pure.
const minImpurity = 1e-12

type node struct {
	feature   int // -1 for leaves
	threshold float64
	left      int32
	right     int32
	value     float64
	samples   int
}

// Tree is a binary regression tree grown with the squared error criterion.
// Samples with x[feature] <= threshold go to the left child.
type Tree struct {
	nodes []node
}

func (t *Tree) Predict(x []float64) float64 {
	i := int32(0)
	for {
		n := &t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func (t *Tree) NumNodes() int {
	return len(t.nodes)
}

func (t *Tree) NumLeaves() int {
	count := 0
	for _, n := range t.nodes {
		if n.feature < 0 {
			count++
		}
	}
	return count
}

func (t *Tree) Depth() int {
	var depth func(i int32) int
	depth = func(i int32) int {
		n := t.nodes[i]
		if n.feature < 0 {
			return 0
		}
		return 1 + max(depth(n.left), depth(n.right))
	}
	return depth(0)
}

type treeConfig struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
}

type treeBuilder struct {
	config   treeConfig
	columns  [][]float64
	y        []float64
	weights  []float64
	rng      base.RandomGenerator
	goesLeft *bitset.BitSet
	nodes    []node
}

// buildTree grows a tree on feature-major columns. A sample takes part with
// its weight; samples of zero weight are left out.
func buildTree(columns [][]float64, y, weights []float64, config treeConfig, rng base.RandomGenerator) *Tree {
	samples := make([]int, 0, len(y))
	for i, w := range weights {
		if w > 0 {
			samples = append(samples, i)
		}
	}
	// each feature keeps its own ordering of the samples in a node
	sorted := make([][]int, len(columns))
	for f := range sorted {
		column := columns[f]
		sorted[f] = slices.Clone(samples)
		slices.SortStableFunc(sorted[f], func(a, b int) int {
			return cmp.Compare(column[a], column[b])
		})
	}
	builder := &treeBuilder{
		config:   config,
		columns:  columns,
		y:        y,
		weights:  weights,
		rng:      rng,
		goesLeft: bitset.New(uint(len(y))),
	}
	builder.build(sorted, 0)
	return &Tree{nodes: builder.nodes}
}

func (b *treeBuilder) build(sorted [][]int, depth int) int32 {
	samples := sorted[0]
	n := len(samples)
	var sumW, sumY, sumYY float64
	for _, i := range samples {
		w, y := b.weights[i], b.y[i]
		sumW += w
		sumY += w * y
		sumYY += w * y * y
	}
	mean := sumY / sumW
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{feature: -1, value: mean, samples: n})

	impurity := sumYY/sumW - mean*mean
	if (b.config.maxDepth > 0 && depth >= b.config.maxDepth) ||
		n < b.config.minSamplesSplit ||
		n < 2*b.config.minSamplesLeaf ||
		impurity <= minImpurity {
		return id
	}

	// find the split maximizing sumL^2/wL + sumR^2/wR
	bestFeature, bestPos := -1, -1
	bestProxy := math.Inf(-1)
	var bestThreshold float64
	for _, f := range b.candidateFeatures() {
		column := b.columns[f]
		order := sorted[f]
		var leftW, leftY float64
		for k := 0; k < n-1; k++ {
			i := order[k]
			leftW += b.weights[i]
			leftY += b.weights[i] * b.y[i]
			leftN := k + 1
			if leftN < b.config.minSamplesLeaf {
				continue
			}
			if n-leftN < b.config.minSamplesLeaf {
				break
			}
			current, next := column[i], column[order[k+1]]
			if next <= current {
				continue
			}
			rightW, rightY := sumW-leftW, sumY-leftY
			proxy := leftY*leftY/leftW + rightY*rightY/rightW
			if proxy > bestProxy {
				bestProxy = proxy
				bestFeature, bestPos = f, k
				bestThreshold = current/2 + next/2
				if bestThreshold >= next {
					bestThreshold = current
				}
			}
		}
	}
	if bestFeature < 0 {
		return id
	}

	// partition every ordering, keeping it sorted
	for _, i := range sorted[bestFeature][:bestPos+1] {
		b.goesLeft.Set(uint(i))
	}
	left := make([][]int, len(sorted))
	right := make([][]int, len(sorted))
	for f, order := range sorted {
		l := make([]int, 0, bestPos+1)
		r := make([]int, 0, n-bestPos-1)
		for _, i := range order {
			if b.goesLeft.Test(uint(i)) {
				l = append(l, i)
			} else {
				r = append(r, i)
			}
		}
		left[f], right[f] = l, r
	}
	for _, i := range sorted[bestFeature][:bestPos+1] {
		b.goesLeft.Clear(uint(i))
	}

	leftId := b.build(left, depth+1)
	rightId := b.build(right, depth+1)
	b.nodes[id].feature = bestFeature
	b.nodes[id].threshold = bestThreshold
	b.nodes[id].left = leftId
	b.nodes[id].right = rightId
	return id
}

func (b *treeBuilder) candidateFeatures() []int {
	numFeatures := len(b.columns)
	if b.config.maxFeatures >= numFeatures {
		features := make([]int, numFeatures)
		for i := range features {
			features[i] = i
		}
		return features
	}
	return b.rng.Sample(0, numFeatures, b.config.maxFeatures)
}

// transpose converts rows into feature-major columns.
func transpose(x [][]float64) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	columns := make([][]float64, len(x[0]))
	for j := range columns {
		columns[j] = make([]float64, len(x))
		for i := range x {
			columns[j][i] = x[i][j]
		}
	}
	return columns
}
